// Package codec converts ledger records to and from JSON text, the format
// blob-oriented stores persist.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode is returned when stored text is not a valid encoding.
var ErrDecode = errors.New("codec: decode failed")

// Encode returns v as a JSON string.
func Encode[T any](v T) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("codec: encode: %w", err)
	}
	return string(data), nil
}

// EncodeIndent is Encode with two-space indentation.
func EncodeIndent[T any](v T) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("codec: encode: %w", err)
	}
	return string(data), nil
}

// Decode parses s into a T. Blank input decodes to the zero value.
func Decode[T any](s string) (T, error) {
	var v T
	if strings.TrimSpace(s) == "" {
		return v, nil
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}
