// Package admincode derives the rotating numeric code that grants admin access.
package admincode

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Length is the number of digits in a code.
const Length = 8

// DefaultWindow is how long one code stays current.
const DefaultWindow = 5 * time.Minute

// Generator produces and checks codes for a shared secret.
type Generator struct {
	secret []byte
	window time.Duration
}

// New returns a Generator. A non-positive window falls back to DefaultWindow.
func New(secret string, window time.Duration) *Generator {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Generator{secret: []byte(secret), window: window}
}

// Current returns the code valid at t.
func (g *Generator) Current(t time.Time) string {
	return g.forWindow(g.windowIndex(t))
}

// ExpiresAt returns when the code current at t rotates.
func (g *Generator) ExpiresAt(t time.Time) time.Time {
	next := (g.windowIndex(t) + 1) * int64(g.window/time.Second)
	return time.Unix(next, 0)
}

// Valid accepts the code of the window containing t and of its two neighbours.
func (g *Generator) Valid(code string, t time.Time) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return false
	}
	w := g.windowIndex(t)
	for _, candidate := range []int64{w, w - 1, w + 1} {
		if hmac.Equal([]byte(g.forWindow(candidate)), []byte(code)) {
			return true
		}
	}
	return false
}

func (g *Generator) windowIndex(t time.Time) int64 {
	return t.Unix() / int64(g.window/time.Second)
}

func (g *Generator) forWindow(w int64) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(strconv.FormatInt(w, 10)))
	digest := hex.EncodeToString(mac.Sum(nil))

	var b strings.Builder
	for _, r := range digest {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == Length {
				return b.String()
			}
		}
	}
	return b.String() + strings.Repeat("0", Length-b.Len())
}
