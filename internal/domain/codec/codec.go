// Package codec compresses JSON documents into text that fits string-only,
// quota-limited storage.
package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/golang/snappy"
)

var ErrUnknownFormat = errors.New("codec: unknown compressed format")

// Codec is a reversible string transform: Decompress(Compress(s)) == s.
type Codec interface {
	Compress(text string) (string, error)
	Decompress(code string) (string, error)
}

// snappyPrefix marks blobs produced by Snappy so foreign or legacy values are
// rejected instead of decoded into garbage.
const snappyPrefix = "s1:"

// Snappy compresses with snappy block format and encodes the result as
// padded standard base64.
type Snappy struct{}

func (Snappy) Compress(text string) (string, error) {
	encoded := snappy.Encode(nil, []byte(text))
	return snappyPrefix + base64.StdEncoding.EncodeToString(encoded), nil
}

func (Snappy) Decompress(code string) (string, error) {
	payload, ok := strings.CutPrefix(code, snappyPrefix)
	if !ok {
		return "", ErrUnknownFormat
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("codec: decode base64: %w", err)
	}
	plain, err := snappy.Decode(nil, raw)
	if err != nil {
		return "", fmt.Errorf("codec: decode snappy: %w", err)
	}
	return string(plain), nil
}
