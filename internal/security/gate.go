package security

import (
	"crypto/subtle"
	"errors"
	"strings"
)

// ErrAccessDenied indicates a missing or wrong access code.
var ErrAccessDenied = errors.New("security: access denied")

// Gate checks a shared access code. Codes are compared after trimming
// whitespace and upper-casing, so "  hr norge " matches "HR NORGE".
type Gate struct {
	phrase []byte
}

// NewGate builds a gate for phrase. An empty phrase disables the gate.
func NewGate(phrase string) *Gate {
	if p := normalizeCode(phrase); p != "" {
		return &Gate{phrase: []byte(p)}
	}
	return &Gate{}
}

// Enabled reports whether a code is required.
func (g *Gate) Enabled() bool { return g != nil && len(g.phrase) > 0 }

// Check returns nil when the gate is disabled or code matches.
func (g *Gate) Check(code string) error {
	if !g.Enabled() {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(normalizeCode(code)), g.phrase) != 1 {
		return ErrAccessDenied
	}
	return nil
}

func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
