package rpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func TestIPMatcher(t *testing.T) {
	cases := []struct {
		matcher string
		ip      string
		want    bool
	}{
		{"127.0.0.1", "127.0.0.1", true},
		{"127.0.0.1", "127.0.0.2", false},
		{"10.0.[0-5].*", "10.0.0.1", true},
		{"10.0.[0-5].*", "10.0.5.255", true},
		{"10.0.[0-5].*", "10.0.6.1", false},
		{"*.*.*.*", "192.168.0.10", true},
		{"*.*.*.*", "192.168.0.256", false},
		{"*.*.*.*", "localhost", false},
		{"*.*.*.*", "::1", false},
	}
	for _, c := range cases {
		m, err := ParseIPMatcher(c.matcher)
		if err != nil {
			t.Fatalf("%v: %v", c.matcher, err)
		}
		got := m.Match(c.ip)
		if got != c.want {
			t.Fatalf("%v.Match(%v): got: %v, want: %v", c.matcher, c.ip, got, c.want)
		}
		if m.String() != c.matcher {
			t.Fatalf("String: got: %v, want: %v", m.String(), c.matcher)
		}
	}
}

func TestParseIPMatcherInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"127.0.0",
		"127.0.0.256",
		"10.0.[5-0].*",
		"10.0.[0-256].*",
		"10.0.[0-].*",
		"10.0.a.*",
	} {
		_, err := ParseIPMatcher(s)
		if err == nil {
			t.Fatalf("%q: want an error", s)
		}
	}
}

func TestAllowInterceptor(t *testing.T) {
	allow, err := ParseIPMatchers([]string{"127.0.0.1", "10.0.[0-5].*"})
	if err != nil {
		t.Fatal(err)
	}
	intercept := AllowInterceptor(allow)
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	}
	info := &grpc.UnaryServerInfo{FullMethod: "/awful.Queue/List"}
	cases := []struct {
		addr net.Addr
		want codes.Code
	}{
		{&net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 5000}, codes.OK},
		{&net.TCPAddr{IP: net.ParseIP("10.0.3.7"), Port: 5000}, codes.OK},
		{&net.TCPAddr{IP: net.ParseIP("10.0.9.7"), Port: 5000}, codes.PermissionDenied},
		{nil, codes.PermissionDenied},
	}
	for _, c := range cases {
		ctx := context.Background()
		if c.addr != nil {
			ctx = peer.NewContext(ctx, &peer.Peer{Addr: c.addr})
		}
		_, err := intercept(ctx, nil, info, handler)
		if status.Code(err) != c.want {
			t.Fatalf("%v: got: %v, want: %v", c.addr, status.Code(err), c.want)
		}
		if c.want == codes.PermissionDenied && !errors.Is(fromStatus(err), ErrPermissionDenied) {
			t.Fatalf("%v: should be converted to ErrPermissionDenied", c.addr)
		}
	}
}
