package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// refresh this many seconds before the recorded expiry
const expiryBufferSeconds = 60

// TokenNeedsRefresh inspects the JWT access token's exp claim and reports
// whether it has expired or is within the refresh buffer.
func TokenNeedsRefresh(accessToken string, now time.Time) (bool, error) {
	parts := strings.Split(accessToken, ".")
	if len(parts) < 2 {
		return false, fmt.Errorf("invalid JWT token format")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("failed to decode JWT payload: %w", err)
	}

	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return false, fmt.Errorf("failed to unmarshal JWT claims: %w", err)
	}

	return now.Unix() >= claims.Exp-expiryBufferSeconds, nil
}
