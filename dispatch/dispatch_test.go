package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/store"
)

var hashA = strings.Repeat("a", 64)

type fixedStatus daemon.Status

func (f fixedStatus) Status(context.Context) daemon.Status { return daemon.Status(f) }

type mapRetriever map[contentid.ID]daemon.Result

func (m mapRetriever) Retrieve(_ context.Context, id contentid.ID) daemon.Result {
	if r, ok := m[id]; ok {
		return r
	}
	return daemon.Result{Error: "HTTP 404: Not Found"}
}

func newDispatcher() (*Dispatcher, *store.Session) {
	session := store.NewSession(store.NewMemory(), "s1", time.Hour)
	d := New(
		fixedStatus{Connected: true, NodeCount: 3, CacheSize: 2048},
		mapRetriever{contentid.ID(hashA): {Success: true, Content: "<p>a</p>", MimeType: "text/html", Source: daemon.SourcePeer, Hash: contentid.ID(hashA)}},
		session,
		nil,
	)
	return d, session
}

func TestDecode(t *testing.T) {
	tests := []struct {
		msg  string
		want Command
	}{
		{`{"type":"GET_STATUS"}`, GetStatus{}},
		{`{"type":"RETRIEVE_CONTENT","hash":"abc"}`, Retrieve{Hash: "abc"}},
		{`{"type":"PARSE_URL","url":"ctt://x"}`, ParseURL{URL: "ctt://x"}},
		{`{"type":"GET_CONTENT","hash":"abc"}`, GetContent{Hash: "abc"}},
	}
	for _, tt := range tests {
		got, err := Decode([]byte(tt.msg))
		require.NoError(t, err, tt.msg)
		assert.Equal(t, tt.want, got)
	}

	_, err := Decode([]byte(`{"type":"DELETE_EVERYTHING"}`))
	assert.True(t, errors.Is(err, ErrUnknownType))

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownType))
}

func TestUnknownMessageType(t *testing.T) {
	d, _ := newDispatcher()
	resp := d.HandleJSON(context.Background(), []byte(`{"type":"NOPE"}`))

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"Unknown message type"}`, string(out))
}

func TestGetStatus(t *testing.T) {
	d, _ := newDispatcher()
	resp := d.HandleJSON(context.Background(), []byte(`{"type":"GET_STATUS"}`))
	st, ok := resp.(daemon.Status)
	require.True(t, ok)
	assert.True(t, st.Connected)
	assert.EqualValues(t, 3, st.NodeCount)
}

func TestParseURL(t *testing.T) {
	d, _ := newDispatcher()

	resp := d.Handle(context.Background(), ParseURL{URL: "ctt://" + strings.ToUpper(hashA)})
	v := resp.(contentid.Validation)
	assert.True(t, v.Valid)
	assert.Equal(t, contentid.ID(hashA), v.Hash)

	resp = d.Handle(context.Background(), ParseURL{URL: "ctt://short"})
	v = resp.(contentid.Validation)
	assert.False(t, v.Valid)
	assert.Equal(t, "Invalid content hash format", v.Error)
}

func TestRetrieveWritesThrough(t *testing.T) {
	d, session := newDispatcher()
	ctx := context.Background()

	assert.Nil(t, d.Handle(ctx, GetContent{Hash: hashA}))

	res := d.Handle(ctx, Retrieve{Hash: hashA}).(daemon.Result)
	require.True(t, res.Success)

	p, ok, err := session.Get(ctx, contentid.ID(hashA))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "<p>a</p>", p.Content)
	assert.Equal(t, daemon.SourcePeer, p.Source)

	got := d.Handle(ctx, GetContent{Hash: hashA}).(*store.Payload)
	require.NotNil(t, got)
	assert.Equal(t, "text/html", got.MimeType)
}

func TestRetrieveFailures(t *testing.T) {
	d, session := newDispatcher()
	ctx := context.Background()

	res := d.Handle(ctx, Retrieve{Hash: "zz"}).(daemon.Result)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid content hash format", res.Error)

	b := strings.Repeat("b", 64)
	res = d.Handle(ctx, Retrieve{Hash: b}).(daemon.Result)
	assert.False(t, res.Success)
	assert.Equal(t, "HTTP 404: Not Found", res.Error)

	_, ok, err := session.Get(ctx, contentid.ID(b))
	require.NoError(t, err)
	assert.False(t, ok, "failed retrievals are not cached")
}

func TestGetContentAbsentIsNull(t *testing.T) {
	d, _ := newDispatcher()
	resp := d.HandleJSON(context.Background(), []byte(`{"type":"GET_CONTENT","hash":"`+hashA+`"}`))

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Nil(t, d.Handle(context.Background(), GetContent{Hash: "bogus"}))
}
