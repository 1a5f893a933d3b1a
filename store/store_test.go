package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
)

var (
	idA = contentid.MustParse(strings.Repeat("a", 64))
	idB = contentid.MustParse(strings.Repeat("b", 64))
)

func samplePayload(content string) Payload {
	return Payload{
		Content:   content,
		MimeType:  "text/html",
		Source:    daemon.SourceCache,
		Timestamp: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSession(NewMemory(), "s1", time.Hour)
	ctx := context.Background()

	p := samplePayload("<h1>hi</h1>")
	require.NoError(t, s.Put(ctx, idA, p))

	got, ok, err := s.Get(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestSessionAbsentIsNotAnError(t *testing.T) {
	s := NewSession(NewMemory(), "s1", time.Hour)
	_, ok, err := s.Get(context.Background(), idA)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionOverwrites(t *testing.T) {
	s := NewSession(NewMemory(), "s1", time.Hour)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, idA, samplePayload("first")))
	require.NoError(t, s.Put(ctx, idA, samplePayload("second")))

	got, ok, err := s.Get(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	backend := NewMemory()
	one := NewSession(backend, "one", time.Hour)
	two := NewSession(backend, "two", time.Hour)
	ctx := context.Background()

	require.NoError(t, one.Put(ctx, idA, samplePayload("mine")))

	_, ok, err := two.Get(ctx, idA)
	require.NoError(t, err)
	assert.False(t, ok, "session two must not see session one's content")

	// Two handles on the same session see the same map.
	again := NewSession(backend, "one", time.Hour)
	got, ok, err := again.Get(ctx, idA)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mine", got.Content)
}

func TestMemoryExpiry(t *testing.T) {
	m := NewMemory()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "k1", samplePayload("x"), time.Minute))
	require.NoError(t, m.Put(ctx, "k2", samplePayload("y"), time.Hour))
	require.NoError(t, m.Put(ctx, "k3", samplePayload("z"), 0))

	now = now.Add(2 * time.Minute)

	_, ok, err := m.Get(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, _ = m.Get(ctx, "k2")
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, m.Sweep())
	assert.Equal(t, 1, m.Len(), "entries without ttl survive")
}

func TestMemoryClosed(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Close())

	assert.ErrorIs(t, m.Put(context.Background(), "k", samplePayload("x"), 0), ErrClosed)
	_, _, err := m.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestFromResult(t *testing.T) {
	now := time.Now()
	p := FromResult(daemon.Result{
		Success:  true,
		Content:  "body",
		MimeType: "text/plain",
		Source:   daemon.SourcePeer,
		Hash:     idB,
	}, now)

	assert.Equal(t, Payload{Content: "body", MimeType: "text/plain", Source: daemon.SourcePeer, Timestamp: now}, p)
}
