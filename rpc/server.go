package rpc

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/imagvfx/awful"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Server serves a scheduler as a QueueServer.
type Server struct {
	sched *awful.Scheduler
}

// NewServer creates a new Server. A nil scheduler is allowed,
// every call to it will fail as the queue isn't defined.
func NewServer(sched *awful.Scheduler) *Server {
	return &Server{sched: sched}
}

// Submit submits a job to the scheduler.
func (s *Server) Submit(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	spec, err := structToSpec(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	info, err := s.sched.SubmitJob(spec)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.String(info.Name), nil
}

// List returns jobs of the scheduler.
func (s *Server) List(ctx context.Context, in *emptypb.Empty) (*structpb.ListValue, error) {
	infos, err := s.sched.List()
	if err != nil {
		return nil, toStatus(err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(infos))}
	for _, info := range infos {
		out.Values = append(out.Values, infoToValue(info))
	}
	return out, nil
}

// Delete deletes a job of the scheduler.
func (s *Server) Delete(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	err := s.sched.Delete(in.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(true), nil
}

// toStatus converts an error of the scheduler to a grpc status error.
func toStatus(err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, awful.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, awful.ErrInvalidJob), errors.Is(err, awful.ErrInvalidResource):
		code = codes.InvalidArgument
	case errors.Is(err, awful.ErrNoScheduler):
		code = codes.FailedPrecondition
	case errors.Is(err, awful.ErrClosed):
		code = codes.Unavailable
	default:
		log.Printf("rpc: %v", err)
	}
	return status.Error(code, err.Error())
}

// fromStatus converts a grpc status error back to an error
// that wraps the scheduler's error of the same kind.
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.NotFound:
		sentinel = awful.ErrNotFound
	case codes.InvalidArgument:
		sentinel = awful.ErrInvalidJob
		if strings.Contains(st.Message(), awful.ErrInvalidResource.Error()) {
			sentinel = awful.ErrInvalidResource
		}
	case codes.FailedPrecondition:
		sentinel = awful.ErrNoScheduler
	case codes.Unavailable:
		sentinel = awful.ErrClosed
	case codes.PermissionDenied:
		sentinel = ErrPermissionDenied
	default:
		return err
	}
	return &statusError{sentinel: sentinel, msg: st.Message()}
}

// statusError is an error came from the server.
// It is matched with errors.Is to the scheduler's error of the kind.
type statusError struct {
	sentinel error
	msg      string
}

func (e *statusError) Error() string {
	return e.msg
}

func (e *statusError) Unwrap() error {
	return e.sentinel
}

// NewGRPCServer registers a scheduler to a new grpc server, which only accepts
// clients allowed by the matchers. Empty matchers allow every client.
func NewGRPCServer(sched *awful.Scheduler, allow []AddressMatcher) *grpc.Server {
	opts := []grpc.ServerOption{}
	if len(allow) != 0 {
		opts = append(opts, grpc.UnaryInterceptor(AllowInterceptor(allow)))
	}
	srv := grpc.NewServer(opts...)
	RegisterQueueServer(srv, NewServer(sched))
	return srv
}
