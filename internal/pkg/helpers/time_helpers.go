package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returns fallback when empty or malformed.
// The config loader validates durations, so a fallback here means the value was never set.
func ParseDuration(durationStr string, fallback time.Duration) time.Duration {
	if durationStr == "" {
		return fallback
	}
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("fallback", fallback).Msg("Failed to parse duration string, using fallback")
		return fallback
	}
	return duration
}
