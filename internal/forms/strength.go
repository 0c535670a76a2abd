package forms

import (
	"strings"
	"time"
	"unicode"
)

// StrengthLevel buckets a password score for display.
type StrengthLevel int

const (
	StrengthWeak StrengthLevel = iota
	StrengthFair
	StrengthGood
	StrengthStrong
)

func (l StrengthLevel) String() string {
	switch l {
	case StrengthFair:
		return "fair"
	case StrengthGood:
		return "good"
	case StrengthStrong:
		return "strong"
	default:
		return "weak"
	}
}

// ScorePassword rates a password on length and character variety. Pure
// and synchronous so tests can call it directly.
func ScorePassword(password string) StrengthLevel {
	if len(password) < 8 {
		return StrengthWeak
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	variety := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			variety++
		}
	}

	// Common sequences cap the score regardless of variety.
	lowered := strings.ToLower(password)
	for _, seq := range []string{"password", "12345678", "qwerty"} {
		if strings.Contains(lowered, seq) {
			return StrengthWeak
		}
	}

	switch {
	case variety >= 4 && len(password) >= 12:
		return StrengthStrong
	case variety >= 3 && len(password) >= 10:
		return StrengthGood
	case variety >= 2:
		return StrengthFair
	default:
		return StrengthWeak
	}
}

// StrengthMeter rate-limits strength recomputation so that per-keystroke
// updates do not rescore on every event. Recompute returns the cached
// level until the cooldown elapses; Force recomputes immediately.
type StrengthMeter struct {
	cooldown time.Duration
	now      func() time.Time

	lastAt    time.Time
	lastInput string
	level     StrengthLevel
}

// NewStrengthMeter creates a meter with the given cooldown. A zero
// cooldown disables rate limiting.
func NewStrengthMeter(cooldown time.Duration) *StrengthMeter {
	return &StrengthMeter{cooldown: cooldown, now: time.Now}
}

// Recompute rescores when the cooldown has elapsed (or on first call),
// otherwise returns the previous level.
func (m *StrengthMeter) Recompute(password string) StrengthLevel {
	if password == m.lastInput && !m.lastAt.IsZero() {
		return m.level
	}
	if !m.lastAt.IsZero() && m.now().Sub(m.lastAt) < m.cooldown {
		return m.level
	}
	return m.Force(password)
}

// Force rescores immediately and resets the cooldown window.
func (m *StrengthMeter) Force(password string) StrengthLevel {
	m.level = ScorePassword(password)
	m.lastInput = password
	m.lastAt = m.now()
	return m.level
}

// Level returns the last computed level without rescoring.
func (m *StrengthMeter) Level() StrengthLevel {
	return m.level
}
