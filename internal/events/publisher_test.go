package events

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// respServer speaks just enough RESP2 to accept PUBLISH and record it.
// Every other command gets an error reply, which go-redis tolerates during
// its connection handshake.
type respServer struct {
	lis net.Listener

	mu        sync.Mutex
	published [][]string
}

func newRESPServer(t *testing.T) *respServer {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &respServer{lis: lis}
	t.Cleanup(func() { _ = lis.Close() })
	go s.serve()
	return s
}

func (s *respServer) serve() {
	for {
		conn, err := s.lis.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *respServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		if strings.EqualFold(args[0], "PUBLISH") && len(args) == 3 {
			s.mu.Lock()
			s.published = append(s.published, args[1:])
			s.mu.Unlock()
			_, _ = io.WriteString(conn, ":1\r\n")
			continue
		}
		_, _ = fmt.Fprintf(conn, "-ERR unknown command '%s'\r\n", args[0])
	}
}

func (s *respServer) messages() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.published...)
}

func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(line, "*") {
		return nil, fmt.Errorf("unexpected %q", line)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[1:]))
	if err != nil || n < 1 {
		return nil, fmt.Errorf("bad array header %q", line)
	}
	args := make([]string, 0, n)
	for i := 0; i < n; i++ {
		header, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "$")))
		if err != nil {
			return nil, err
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args = append(args, string(buf[:size]))
	}
	return args, nil
}

func TestPostingChangedPayload(t *testing.T) {
	payload, err := postingChangedPayload("job-1", ActionUpdated)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"EVENT_JOB_POSTING_CHANGED","jobId":"job-1","action":"updated"}`, string(payload))
}

func TestRedisPublisher_PublishesOnChannel(t *testing.T) {
	srv := newRESPServer(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.lis.Addr().String(), Protocol: 2})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pub := NewRedisPublisher(rdb)
	require.NoError(t, pub.PublishPostingChanged(ctx, "job-42", ActionCreated))
	require.NoError(t, pub.PublishPostingChanged(ctx, "job-42", ActionDeleted))

	msgs := srv.messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ChannelPostingChanged, msgs[0][0])
	assert.JSONEq(t, `{"type":"EVENT_JOB_POSTING_CHANGED","jobId":"job-42","action":"created"}`, msgs[0][1])
	assert.JSONEq(t, `{"type":"EVENT_JOB_POSTING_CHANGED","jobId":"job-42","action":"deleted"}`, msgs[1][1])
}

func TestRedisPublisher_Unreachable(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	rdb := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	t.Cleanup(func() { _ = rdb.Close() })

	err = NewRedisPublisher(rdb).PublishPostingChanged(context.Background(), "job-1", ActionCreated)
	assert.ErrorContains(t, err, "publish EVENT_JOB_POSTING_CHANGED")
}
