package store

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Encoded payloads start with a one-byte tag naming the encoding.
const (
	tagJSON = 'j'
	tagZstd = 'z'
)

// codec serializes payloads, compressing anything at or above threshold.
type codec struct {
	threshold int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

func newCodec(threshold int) (*codec, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{threshold: threshold, encoder: encoder, decoder: decoder}, nil
}

func (c *codec) encode(p Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	if c.threshold > 0 && len(raw) >= c.threshold {
		out := make([]byte, 1, len(raw)/2+1)
		out[0] = tagZstd
		out = c.encoder.EncodeAll(raw, out)
		// incompressible content is kept as-is
		if len(out) < len(raw)+1 {
			return out, nil
		}
	}

	out := make([]byte, 0, len(raw)+1)
	out = append(out, tagJSON)
	return append(out, raw...), nil
}

func (c *codec) decode(data []byte) (Payload, error) {
	var p Payload
	if len(data) == 0 {
		return p, fmt.Errorf("decode payload: empty value")
	}

	raw := data[1:]
	switch data[0] {
	case tagJSON:
	case tagZstd:
		var err error
		raw, err = c.decoder.DecodeAll(raw, nil)
		if err != nil {
			return p, fmt.Errorf("decompress payload: %w", err)
		}
	default:
		return p, fmt.Errorf("decode payload: unknown encoding %q", data[0])
	}

	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("unmarshal payload: %w", err)
	}
	return p, nil
}

func (c *codec) close() {
	c.encoder.Close()
	c.decoder.Close()
}
