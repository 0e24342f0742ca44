package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/capacitanet/internal/logging"
	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type recordingLogger struct {
	logging.Nop
	msgs []string
	args [][]any
}

func (r *recordingLogger) Debug(_ context.Context, msg string, args ...any) {
	r.msgs = append(r.msgs, msg)
	r.args = append(r.args, args)
}

func (r *recordingLogger) With(...any) logging.Logger { return r }

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	log := &recordingLogger{}
	s := NewGRPCServer("", log)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return "ok", nil
	})
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp)

	wantErr := status.Error(codes.NotFound, "unknown service")
	_, err = s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req any) (any, error) {
		return nil, wantErr
	})
	assert.True(t, errors.Is(err, wantErr))

	assert.Equal(t, []string{"grpc call", "grpc call"}, log.msgs)
	assert.Contains(t, log.args[0], "/grpc.health.v1.Health/Check")
	assert.Contains(t, log.args[1], "NotFound")
}
