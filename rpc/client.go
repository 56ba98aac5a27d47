package rpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imagvfx/awful"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ErrNoDaemon is returned when the daemon's endpoint isn't known.
var ErrNoDaemon = errors.New("no daemon running")

// Client calls a remote scheduler.
// Its methods return errors those could be checked with errors.Is
// against the scheduler's errors.
type Client struct {
	conn    *grpc.ClientConn
	queue   QueueClient
	timeout time.Duration
}

// Dial connects to a daemon listening addr.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithInsecure()}, opts...)
	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %v: %w", addr, err)
	}
	return NewClient(conn), nil
}

// DialEndpoint connects to a daemon, which address is in the endpoint file.
func DialEndpoint(path string, opts ...grpc.DialOption) (*Client, error) {
	addr, err := ReadEndpoint(path)
	if err != nil {
		return nil, err
	}
	return Dial(addr, opts...)
}

// NewClient creates a client on a connection.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:    conn,
		queue:   NewQueueClient(conn),
		timeout: 10 * time.Second,
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Submit submits a job, and returns its name.
func (c *Client) Submit(spec awful.JobSpec) (string, error) {
	ctx, cancel := c.context()
	defer cancel()
	resp, err := c.queue.Submit(ctx, specToStruct(spec))
	if err != nil {
		return "", fromStatus(err)
	}
	return resp.GetValue(), nil
}

// List returns jobs of the scheduler.
func (c *Client) List() ([]awful.JobInfo, error) {
	ctx, cancel := c.context()
	defer cancel()
	resp, err := c.queue.List(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, fromStatus(err)
	}
	infos := make([]awful.JobInfo, 0, len(resp.GetValues()))
	for _, v := range resp.GetValues() {
		info, err := valueToInfo(v)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Delete deletes a job by its name.
func (c *Client) Delete(name string) error {
	ctx, cancel := c.context()
	defer cancel()
	_, err := c.queue.Delete(ctx, wrapperspb.String(name))
	if err != nil {
		return fromStatus(err)
	}
	return nil
}
