package featureflags

import (
	"os"
	"strings"
)

// Flags currently honored by the server.
const (
	// LoginRateLimit turns on per-address brute-force limiting of the
	// login endpoint.
	LoginRateLimit = "login_rate_limit"
)

// Enabled reports whether a flag is turned on via environment variable.
// Flags are read as FLAG_<NAME>=1/true/yes/on (case-insensitive); unset or
// anything else means off.
func Enabled(name string) bool {
	v := os.Getenv("FLAG_" + strings.ToUpper(name))
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
