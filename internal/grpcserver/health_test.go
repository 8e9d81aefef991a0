package grpcserver

import (
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func dial(t *testing.T, s *Server) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_ProviderStatus(t *testing.T) {
	s := New(slog.New(slog.DiscardHandler))
	c := dial(t, s)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, c, ServiceName))

	s.SetProviderStatus("adzuna", true)
	s.SetProviderStatus("remoteok", false)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, c, "provider.adzuna"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, c, "provider.remoteok"))

	s.SetProviderStatus("remoteok", true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, c, "provider.remoteok"))
}

func TestHealth_UnknownService(t *testing.T) {
	s := New(slog.New(slog.DiscardHandler))
	c := dial(t, s)

	_, err := c.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "provider.nope"})
	assert.Error(t, err)
}
