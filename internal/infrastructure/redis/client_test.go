package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientConnects(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, connectTimeout, client.Options().DialTimeout)
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	s.CheckGet(t, "k", "v")
}

func TestNewClientKeepsExplicitDialTimeout(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), "redis://"+s.Addr()+"?dial_timeout=1s")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "1s", client.Options().DialTimeout.String())
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis url")
}

func TestNewClientFailsWhenServerIsDown(t *testing.T) {
	s := miniredis.RunT(t)
	url := "redis://" + s.Addr()
	s.Close()

	_, err := NewClient(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestPingReportsOutage(t *testing.T) {
	s := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+s.Addr())
	require.NoError(t, err)
	defer client.Close()

	check := Ping(client)
	require.NoError(t, check(context.Background()))

	s.Close()
	assert.Error(t, check(context.Background()))
}
