package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a configured duration string, falling back to def when
// the value is empty, malformed, or not positive.
func ParseDuration(durationStr string, def time.Duration) time.Duration {
	if durationStr == "" {
		return def
	}
	d, err := time.ParseDuration(durationStr)
	if err != nil || d <= 0 {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("default", def).Msg("Invalid duration, using default")
		return def
	}
	return d
}
