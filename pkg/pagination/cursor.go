package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cursor is the canonical, opaque pagination token (pre-encoding) with short field names to
// minimize payload size. It is serialized to minified JSON and encoded with URL-safe base64.
//
// Fields:
//   - v:   version of the cursor schema
//   - did: dataset handle ID
//   - seg: listing segment (e.g. "high_risk", "underpaid")
//   - fh:  hash of the filters the listing was issued for
//   - off: offset in rows from the start of the listing
//   - ps:  page size in rows
//   - iat: issued-at timestamp (unix seconds)
type Cursor struct {
	V   int    `json:"v"`
	Did string `json:"did"`
	Seg string `json:"seg"`
	Fh  string `json:"fh"`
	Off int    `json:"off"`
	Ps  int    `json:"ps"`
	Iat int64  `json:"iat"`
}

// ErrMismatch indicates a cursor issued for a different dataset, listing or filter set.
var ErrMismatch = errors.New("cursor: issued for a different listing")

// EncodeCursor serializes and encodes the cursor as URL-safe base64 (without padding).
func EncodeCursor(c Cursor) (string, error) {
	if err := validate(&c); err != nil {
		return "", err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor decodes a URL-safe base64 token and parses the JSON cursor.
func DecodeCursor(token string) (*Cursor, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, errors.New("cursor: empty token")
	}
	data, err := base64.RawURLEncoding.DecodeString(t)
	if err != nil {
		return nil, fmt.Errorf("cursor: invalid base64: %w", err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("cursor: invalid json: %w", err)
	}
	if err := validate(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Bind checks that c continues the listing identified by dataset, segment
// and filter hash.
func (c *Cursor) Bind(datasetID, segment, filterHash string) error {
	if c.Did != datasetID || c.Seg != segment || c.Fh != filterHash {
		return ErrMismatch
	}
	return nil
}

// validate performs structural checks and defaulting.
func validate(c *Cursor) error {
	if c.V <= 0 {
		c.V = 1
	}
	if c.Iat == 0 {
		c.Iat = time.Now().Unix()
	}
	if strings.TrimSpace(c.Did) == "" {
		return errors.New("cursor: did (dataset id) required")
	}
	if strings.TrimSpace(c.Seg) == "" {
		return errors.New("cursor: seg (segment) required")
	}
	if c.Off < 0 {
		return errors.New("cursor: off must be >= 0")
	}
	if c.Ps <= 0 {
		return errors.New("cursor: ps must be > 0")
	}
	return nil
}

// NextOffset computes the next offset after returning n rows.
func NextOffset(curr, n int) int {
	if curr < 0 {
		curr = 0
	}
	if n <= 0 {
		return curr
	}
	return curr + n
}

// Page slices rows[off:off+size] and reports the next offset, or -1 when the
// listing is exhausted.
func Page[T any](rows []T, off, size int) ([]T, int) {
	if off < 0 {
		off = 0
	}
	if off >= len(rows) || size <= 0 {
		return []T{}, -1
	}
	end := min(off+size, len(rows))
	next := NextOffset(off, end-off)
	if next >= len(rows) {
		next = -1
	}
	return rows[off:end], next
}
