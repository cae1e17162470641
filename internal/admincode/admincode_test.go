package admincode

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var eightDigits = regexp.MustCompile(`^\d{8}$`)

func TestCurrent_IsEightDigitsAndStableWithinWindow(t *testing.T) {
	g := New("secret", 5*time.Minute)
	at := time.Unix(1_700_000_100, 0)

	code := g.Current(at)
	assert.Regexp(t, eightDigits, code)
	assert.Equal(t, code, g.Current(at.Add(time.Minute)))
}

func TestCurrent_DependsOnSecret(t *testing.T) {
	at := time.Unix(1_700_000_100, 0)
	assert.NotEqual(t, New("a", 0).Current(at), New("b", 0).Current(at))
}

func TestValid_AcceptsNeighbouringWindows(t *testing.T) {
	g := New("secret", 5*time.Minute)
	at := time.Unix(1_700_000_100, 0)
	code := g.Current(at)

	assert.True(t, g.Valid(code, at))
	assert.True(t, g.Valid(" "+code+" ", at))
	assert.True(t, g.Valid(code, at.Add(5*time.Minute)))
	assert.True(t, g.Valid(code, at.Add(-5*time.Minute)))
	assert.False(t, g.Valid(code, at.Add(15*time.Minute)))
	assert.False(t, g.Valid("", at))
}

func TestExpiresAt(t *testing.T) {
	g := New("secret", 5*time.Minute)
	at := time.Unix(1_700_000_100, 0)
	assert.Equal(t, time.Unix(1_700_000_100, 0).Truncate(5*time.Minute).Add(5*time.Minute).Unix(), g.ExpiresAt(at).Unix())
}
