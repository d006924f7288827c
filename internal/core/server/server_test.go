package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfigAddr(t *testing.T) {
	assert.Equal(t, ":8080", Config{Port: 8080}.Addr())
	assert.Equal(t, "http://127.0.0.1:8080", Config{Host: "0.0.0.0", Port: 8080}.BaseURL())
	assert.Equal(t, "http://10.1.2.3:9", Config{Host: "10.1.2.3", Port: 9}.BaseURL())
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	srv := New(Config{Host: "127.0.0.1", Port: port, ReadTimeout: time.Second}, http.NotFoundHandler(), zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, srv, zap.NewNop()) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", srv.Addr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := New(Config{Host: "127.0.0.1", Port: ln.Addr().(*net.TCPAddr).Port}, http.NotFoundHandler(), nil)
	err = Run(context.Background(), srv, zap.NewNop())
	assert.ErrorContains(t, err, "listen")
}
