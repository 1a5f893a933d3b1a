// Package bridge is a local HTTP bridge that serves the daemon contract
// (GET /status, GET /retrieve/{hash}) from a content cache directory. It
// stands in for the mesh daemon during development and tests.
package bridge

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"meshbrowse/contentid"
)

// ErrNotFound is returned when the cache holds no blob for a hash.
var ErrNotFound = errors.New("content not found")

const zstdExt = ".zst"

// Cache is a directory of blobs named by the sha256 of their content.
// Blobs are stored raw, or zstd-compressed with a .zst suffix.
type Cache struct {
	dir      string
	compress bool
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// OpenCache opens dir, creating it if needed.
func OpenCache(dir string, compress bool) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Cache{dir: dir, compress: compress, encoder: encoder, decoder: decoder}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Put stores data and returns its identifier. Storing the same content twice
// is a no-op.
func (c *Cache) Put(data []byte) (contentid.ID, error) {
	sum := sha256.Sum256(data)
	id := contentid.ID(hex.EncodeToString(sum[:]))

	if _, err := c.find(id); err == nil {
		return id, nil
	}

	name, blob := string(id), data
	if c.compress {
		name += zstdExt
		blob = c.encoder.EncodeAll(data, nil)
	}

	tmp, err := os.CreateTemp(c.dir, ".put-*")
	if err != nil {
		return "", fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(c.dir, name)); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return id, nil
}

// Get returns the content stored under id.
func (c *Cache) Get(id contentid.ID) ([]byte, error) {
	path, err := c.find(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	if filepath.Ext(path) == zstdExt {
		data, err = c.decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress blob %s: %w", id.Short(), err)
		}
	}
	return data, nil
}

func (c *Cache) find(id contentid.ID) (string, error) {
	for _, name := range []string{string(id), string(id) + zstdExt} {
		path := filepath.Join(c.dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("stat blob: %w", err)
		}
	}
	return "", ErrNotFound
}

// Size returns the total on-disk size of the cache in bytes.
func (c *Cache) Size() (uint64, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cache dir: %w", err)
	}
	var total uint64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += uint64(info.Size())
	}
	return total, nil
}

// Close releases the codec.
func (c *Cache) Close() {
	c.encoder.Close()
	c.decoder.Close()
}
