// Package dispatch implements the command channel between viewer surfaces
// and the navigation core. Commands form a closed set decoded from JSON
// messages of the shape {"type": "...", ...}.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
	"meshbrowse/logger"
	"meshbrowse/store"
)

// Message types on the wire.
const (
	TypeGetStatus  = "GET_STATUS"
	TypeRetrieve   = "RETRIEVE_CONTENT"
	TypeParseURL   = "PARSE_URL"
	TypeGetContent = "GET_CONTENT"
)

// UnknownMessageType is returned for messages outside the command set.
const UnknownMessageType = "Unknown message type"

// ErrUnknownType is wrapped by Decode for unrecognised message types.
var ErrUnknownType = errors.New(UnknownMessageType)

// Command is one of GetStatus, Retrieve, ParseURL or GetContent.
type Command interface {
	Type() string
}

// GetStatus asks for a fresh daemon status.
type GetStatus struct{}

// Retrieve fetches Hash from the daemon and caches it in the session.
type Retrieve struct{ Hash string }

// ParseURL validates URL as a ctt:// address.
type ParseURL struct{ URL string }

// GetContent reads Hash from the session store.
type GetContent struct{ Hash string }

func (GetStatus) Type() string  { return TypeGetStatus }
func (Retrieve) Type() string   { return TypeRetrieve }
func (ParseURL) Type() string   { return TypeParseURL }
func (GetContent) Type() string { return TypeGetContent }

type message struct {
	Type string `json:"type"`
	Hash string `json:"hash"`
	URL  string `json:"url"`
}

// Decode parses a JSON message into a Command.
func Decode(data []byte) (Command, error) {
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	switch m.Type {
	case TypeGetStatus:
		return GetStatus{}, nil
	case TypeRetrieve:
		return Retrieve{Hash: m.Hash}, nil
	case TypeParseURL:
		return ParseURL{URL: m.URL}, nil
	case TypeGetContent:
		return GetContent{Hash: m.Hash}, nil
	default:
		return nil, fmt.Errorf("%q: %w", m.Type, ErrUnknownType)
	}
}

// ErrorResponse is sent for messages that cannot be dispatched.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Content is the session store interface the dispatcher needs.
// *store.Session implements it.
type Content interface {
	Put(ctx context.Context, id contentid.ID, p store.Payload) error
	Get(ctx context.Context, id contentid.ID) (store.Payload, bool, error)
}

// Retriever fetches content for an identifier.
type Retriever interface {
	Retrieve(ctx context.Context, id contentid.ID) daemon.Result
}

// Dispatcher answers commands for one session.
type Dispatcher struct {
	status    daemon.StatusSource
	retriever Retriever
	content   Content
	log       logger.Logger
	now       func() time.Time
}

// New returns a Dispatcher. A nil log discards output.
func New(status daemon.StatusSource, retriever Retriever, content Content, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	return &Dispatcher{status: status, retriever: retriever, content: content, log: log, now: time.Now}
}

// Handle answers cmd. The response is one of daemon.Status, daemon.Result,
// contentid.Validation, *store.Payload (nil when absent) or ErrorResponse.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) any {
	switch c := cmd.(type) {
	case GetStatus:
		return d.status.Status(ctx)
	case Retrieve:
		return d.retrieve(ctx, c.Hash)
	case ParseURL:
		return contentid.Validate(c.URL)
	case GetContent:
		return d.getContent(ctx, c.Hash)
	default:
		return ErrorResponse{Error: UnknownMessageType}
	}
}

// HandleJSON decodes and answers a raw message.
func (d *Dispatcher) HandleJSON(ctx context.Context, data []byte) any {
	cmd, err := Decode(data)
	if errors.Is(err, ErrUnknownType) {
		return ErrorResponse{Error: UnknownMessageType}
	}
	if err != nil {
		return ErrorResponse{Error: err.Error()}
	}
	return d.Handle(ctx, cmd)
}

func (d *Dispatcher) retrieve(ctx context.Context, hash string) daemon.Result {
	id, err := contentid.Parse(hash)
	if err != nil {
		return daemon.Result{Success: false, Error: err.Error()}
	}
	res := d.retriever.Retrieve(ctx, id)
	if !res.Success {
		return res
	}
	if err := d.content.Put(ctx, id, store.FromResult(res, d.now())); err != nil {
		d.log.Error("Failed to cache retrieved content", logger.String("hash", id.String()), logger.Error(err))
	}
	return res
}

func (d *Dispatcher) getContent(ctx context.Context, hash string) *store.Payload {
	id, err := contentid.Parse(hash)
	if err != nil {
		return nil
	}
	p, ok, err := d.content.Get(ctx, id)
	if err != nil {
		d.log.Warn("Failed to read session content", logger.String("hash", id.String()), logger.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return &p
}
