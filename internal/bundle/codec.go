package bundle

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
)

// gzip member header magic, RFC 1952
var gzipMagic = []byte{0x1f, 0x8b}

// Encode serializes the bundle to its canonical JSON form and
// gzip-compresses the result.
func Encode(b *Bundle) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal bundle: %w", err)
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress bundle: %w", err)
	}

	return buf.Bytes(), nil
}

// Decode parses a stored bundle payload. Compression is detected by
// sniffing the gzip magic bytes; payloads without it are read as plain
// UTF-8 JSON, which keeps artifacts written before compression was
// introduced readable.
func Decode(data []byte) (*Bundle, error) {
	raw := data
	if bytes.HasPrefix(data, gzipMagic) {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open gzip payload: %w", err)
		}
		defer zr.Close()

		raw, err = io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("decompress bundle: %w", err)
		}
	}

	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return &b, nil
}

// Compress gzips an arbitrary payload. Used for artifacts that are
// stored compressed but are not bundle JSON, such as snapshot HTML.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress payload: %w", err)
	}
	return buf.Bytes(), nil
}
