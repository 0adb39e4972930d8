package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisFromURL(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisFromURL(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.NoError(t, Close(rdb))
}

func TestNewRedisFromURLRejectsBadURL(t *testing.T) {
	_, err := NewRedisFromURL(context.Background(), "http://nope")
	assert.Error(t, err)
}

func TestNewRedisFromURLUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisFromURL(context.Background(), "redis://"+addr)
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	assert.NoError(t, Close(nil))
}
