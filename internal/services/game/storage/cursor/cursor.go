// Package cursor encodes opaque page tokens for game log listings.
//
// A token pins the position and the filter it was minted under, so a stale
// or tampered token cannot silently jump between result sets.
package cursor

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

const (
	// DirectionForward pages oldest to newest (ascending id).
	DirectionForward = "fwd"
	// DirectionBackward pages newest to oldest (descending id).
	DirectionBackward = "bwd"
)

// Cursor is the decoded form of a page token.
type Cursor struct {
	// ID is the last record id of the previous page.
	ID int64 `json:"id"`
	// Dir is the paging direction, DirectionForward or DirectionBackward.
	Dir string `json:"dir"`
	// FilterHash pins the token to the filter it was minted under.
	FilterHash string `json:"f,omitempty"`
}

// New builds a cursor continuing after id in the given sort order.
func New(id int64, descending bool, filter string) Cursor {
	dir := DirectionForward
	if descending {
		dir = DirectionBackward
	}
	return Cursor{
		ID:         id,
		Dir:        dir,
		FilterHash: HashFilter(filter),
	}
}

// Encode serializes a cursor into an opaque URL-safe token.
func Encode(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Decode parses a page token back into a cursor. Unknown directions are
// rejected so arithmetic never runs on a malformed token.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("page token is empty")
	}
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("decode page token: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, fmt.Errorf("unmarshal page token: %w", err)
	}
	if c.Dir != DirectionForward && c.Dir != DirectionBackward {
		return Cursor{}, fmt.Errorf("invalid page token direction %q", c.Dir)
	}
	return c, nil
}

// HashFilter derives a short fingerprint of a filter expression. Empty
// filters hash to the empty string so unfiltered tokens stay minimal.
func HashFilter(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:16]
}

// ValidateFilterHash rejects a cursor minted under a different filter.
func ValidateFilterHash(c Cursor, filter string) error {
	if c.FilterHash != HashFilter(filter) {
		return fmt.Errorf("page token does not match the request filter")
	}
	return nil
}
