package dns

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_IPLiteral(t *testing.T) {
	ip, err := Lookup(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)

	ip, err = Lookup(context.Background(), "::1")
	require.NoError(t, err)
	assert.Equal(t, "::1", ip)
}

func TestDialContext_Loopback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := DialContext(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	conn.Close()
}

func TestDialContext_BadAddress(t *testing.T) {
	_, err := DialContext(context.Background(), "tcp", "no-port")
	assert.Error(t, err)
}
