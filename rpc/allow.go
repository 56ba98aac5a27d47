package rpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// ErrPermissionDenied is returned when the server doesn't allow the client.
var ErrPermissionDenied = errors.New("permission denied")

// AddressMatcher matches to a range of client addresses.
type AddressMatcher interface {
	Match(string) bool
}

// IPMatcher matches to an ipv4 address or more.
type IPMatcher []IPPartMatcher

func (m IPMatcher) Match(ip string) bool {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		if n < 0 || n >= 256 {
			return false
		}
		if !m[i].Match(n) {
			return false
		}
	}
	return true
}

func (m IPMatcher) String() string {
	parts := make([]string, len(m))
	for i, p := range m {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".")
}

// IPPartMatcher matches to a part of an ip address.
type IPPartMatcher interface {
	Match(int) bool
}

type IPPartAllMatcher struct{}

func (m IPPartAllMatcher) Match(n int) bool {
	return true
}

func (m IPPartAllMatcher) String() string {
	return "*"
}

type IPPartSingleMatcher struct {
	n int
}

func (m IPPartSingleMatcher) Match(n int) bool {
	return n == m.n
}

func (m IPPartSingleMatcher) String() string {
	return strconv.Itoa(m.n)
}

type IPPartRangeMatcher struct {
	start, end int
}

func (m IPPartRangeMatcher) Match(n int) bool {
	return m.start <= n && n <= m.end
}

func (m IPPartRangeMatcher) String() string {
	return fmt.Sprintf("[%d-%d]", m.start, m.end)
}

// ParseIPMatcher parses an ipv4 matcher like "10.0.[0-5].*".
// Each part is a number, a range of numbers in brackets, or * for any number.
func ParseIPMatcher(s string) (IPMatcher, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return nil, fmt.Errorf("ip does not consists of 4 parts: %v", s)
	}
	m := make(IPMatcher, 4)
	for i, p := range parts {
		if p == "*" {
			m[i] = IPPartAllMatcher{}
			continue
		}
		n, err := strconv.Atoi(p)
		if err == nil {
			if n < 0 || n >= 256 {
				return nil, fmt.Errorf("an ip part should be 0-255 when it is a number: %v", s)
			}
			m[i] = IPPartSingleMatcher{n}
			continue
		}
		start, end, err := parseIPRange(p)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", s, err)
		}
		m[i] = IPPartRangeMatcher{start, end}
	}
	return m, nil
}

// parseIPRange parses a range of an ip part, like "[0-5]".
func parseIPRange(p string) (int, int, error) {
	if !strings.HasPrefix(p, "[") || !strings.HasSuffix(p, "]") {
		return -1, -1, fmt.Errorf("unknown formatting for ip part: %v", p)
	}
	rng := strings.Split(p[1:len(p)-1], "-")
	if len(rng) != 2 {
		return -1, -1, fmt.Errorf("ip range should have start and end: %v", p)
	}
	bounds := make([]int, 2)
	for i, r := range rng {
		n, err := strconv.Atoi(r)
		if err != nil {
			return -1, -1, fmt.Errorf("invalid ip range: %v", p)
		}
		if n < 0 || n >= 256 {
			return -1, -1, fmt.Errorf("ip range should be in 0-255: %v", p)
		}
		bounds[i] = n
	}
	if bounds[0] > bounds[1] {
		return -1, -1, fmt.Errorf("ip range start is bigger than end: %v", p)
	}
	return bounds[0], bounds[1], nil
}

// ParseIPMatchers parses ip matchers.
func ParseIPMatchers(ss []string) ([]AddressMatcher, error) {
	ms := make([]AddressMatcher, 0, len(ss))
	for _, s := range ss {
		m, err := ParseIPMatcher(s)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// Allowed reports whether an address is matched to one of the matchers.
// The address could have a port, which will be ignored.
func Allowed(addr string, allow []AddressMatcher) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	for _, m := range allow {
		if m.Match(host) {
			return true
		}
	}
	return false
}

// AllowInterceptor returns an interceptor rejects calls from clients
// not matched to the matchers.
func AllowInterceptor(allow []AddressMatcher) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		p, ok := peer.FromContext(ctx)
		if !ok || p.Addr == nil {
			return nil, status.Error(codes.PermissionDenied, "unknown client")
		}
		if !Allowed(p.Addr.String(), allow) {
			return nil, status.Errorf(codes.PermissionDenied, "client not allowed: %v", p.Addr)
		}
		return handler(ctx, req)
	}
}
