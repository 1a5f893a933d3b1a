package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, threshold int) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRedis(RedisConfig{Address: mr.Addr(), CompressThreshold: threshold})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestNewRedis_EmptyAddress(t *testing.T) {
	r, err := NewRedis(RedisConfig{})
	assert.ErrorIs(t, err, ErrEmptyAddress)
	assert.Nil(t, r)
}

func TestRedisRoundTrip(t *testing.T) {
	r, _ := newTestRedis(t, 0)
	s := NewSession(r, "sess", time.Hour)
	ctx := context.Background()

	p := samplePayload("<h1>hi</h1>")
	require.NoError(t, s.Put(ctx, idA, p))

	got, ok, err := s.Get(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestRedisCompressesLargePayloads(t *testing.T) {
	r, mr := newTestRedis(t, 64)
	s := NewSession(r, "sess", time.Hour)
	ctx := context.Background()

	p := samplePayload(strings.Repeat("compressible ", 500))
	require.NoError(t, s.Put(ctx, idA, p))

	raw, err := mr.Get(s.key(idA))
	require.NoError(t, err)
	assert.Equal(t, byte(tagZstd), raw[0])
	assert.Less(t, len(raw), len(p.Content))

	got, ok, err := s.Get(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestRedisExpiresWithSession(t *testing.T) {
	r, mr := newTestRedis(t, 0)
	s := NewSession(r, "sess", time.Minute)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, idA, samplePayload("x")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := s.Get(ctx, idA)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisMissingKey(t *testing.T) {
	r, _ := newTestRedis(t, 0)
	_, ok, err := r.Get(context.Background(), "nope")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCorruptValue(t *testing.T) {
	r, mr := newTestRedis(t, 0)
	require.NoError(t, mr.Set("bad", "?garbage"))

	_, ok, err := r.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisClosed(t *testing.T) {
	r, _ := newTestRedis(t, 0)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.Put(context.Background(), "k", samplePayload("x"), 0), ErrClosed)
}

func TestCodecSmallPayloadStaysJSON(t *testing.T) {
	c, err := newCodec(1 << 20)
	require.NoError(t, err)
	defer c.close()

	data, err := c.encode(samplePayload("tiny"))
	require.NoError(t, err)
	assert.Equal(t, byte(tagJSON), data[0])

	got, err := c.decode(data)
	require.NoError(t, err)
	assert.Equal(t, "tiny", got.Content)
}
