package daemon_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
)

var testID = contentid.MustParse(strings.Repeat("a", 64))

func newClient(t *testing.T, h http.HandlerFunc) (*daemon.Client, *daemon.Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	m := daemon.NewMetrics(prometheus.NewRegistry())
	return daemon.NewClient(daemon.Options{BaseURL: srv.URL, Timeout: time.Second}, nil, m), m
}

func TestStatus_Online(t *testing.T) {
	c, m := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"online","nodes":3,"cache_size":1536}`))
	})

	st := c.Status(context.Background())
	assert.True(t, st.Connected)
	assert.EqualValues(t, 3, st.NodeCount)
	assert.EqualValues(t, 1536, st.CacheSize)
	assert.False(t, st.LastCheck.IsZero())
	assert.InDelta(t, 1, testutil.ToFloat64(m.StatusChecks.WithLabelValues("true")), 0)
}

func TestStatus_Non2xxIsOffline(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	st := c.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Zero(t, st.NodeCount)
}

func TestStatus_BadBodyIsOffline(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	assert.False(t, c.Status(context.Background()).Connected)
}

func TestStatus_UnreachableIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := daemon.NewClient(daemon.Options{BaseURL: base, Timeout: time.Second}, nil, nil)
	st := c.Status(context.Background())
	assert.False(t, st.Connected)
	assert.False(t, st.LastCheck.IsZero())
}

func TestStatus_TimeoutIsBounded(t *testing.T) {
	release := make(chan struct{})
	c := func() *daemon.Client {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })
		return daemon.NewClient(daemon.Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, nil)
	}()

	start := time.Now()
	st := c.Status(context.Background())
	assert.False(t, st.Connected)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRetrieve_Success(t *testing.T) {
	c, m := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retrieve/"+testID.String(), r.URL.Path)
		_, _ = w.Write([]byte(`{"content":"<h1>hi</h1>","mime_type":"text/html","source":"cache"}`))
	})

	res := c.Retrieve(context.Background(), testID)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "<h1>hi</h1>", res.Content)
	assert.Equal(t, "text/html", res.MimeType)
	assert.Equal(t, daemon.SourceCache, res.Source)
	assert.Equal(t, testID, res.Hash)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Retrievals.WithLabelValues("cache")), 0)
}

func TestRetrieve_Defaults(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"x"}`))
	})

	res := c.Retrieve(context.Background(), testID)
	require.True(t, res.Success)
	assert.Equal(t, "text/html", res.MimeType)
	assert.Equal(t, daemon.SourceUnknown, res.Source)
}

func TestRetrieve_UnknownSourceLabel(t *testing.T) {
	c, m := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":"x","source":"peer-7f3a"}`))
	})

	res := c.Retrieve(context.Background(), testID)
	require.True(t, res.Success)
	assert.Equal(t, daemon.Source("peer-7f3a"), res.Source)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Retrievals.WithLabelValues("other")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(m.Retrievals))
}

func TestRetrieve_NotFound(t *testing.T) {
	var calls atomic.Int32
	c, m := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Content not found"}`))
	})

	res := c.Retrieve(context.Background(), testID)
	assert.False(t, res.Success)
	assert.Equal(t, "HTTP 404: Not Found", res.Error)
	assert.EqualValues(t, 1, calls.Load(), "retrieval must not be retried")
	assert.InDelta(t, 1, testutil.ToFloat64(m.Retrievals.WithLabelValues("error")), 0)
}

func TestRetrieve_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := daemon.NewClient(daemon.Options{BaseURL: base}, nil, nil)
	res := c.Retrieve(context.Background(), testID)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := daemon.NewClient(daemon.Options{BaseURL: "http://localhost:8765/"}, nil, nil)
	assert.Equal(t, "http://localhost:8765", c.BaseURL())
}
