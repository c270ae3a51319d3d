package main

import (
	"fmt"
	"time"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	DatabasePath         string        `env:"DATABASE_PATH,default=sign_relay.db"`
	CachePath            string        `env:"CACHE_PATH,required=true"`
	VideoDir             string        `env:"VIDEO_DIR,default=downloaded_videos"`
	LogLevel             string        `env:"LOG_LEVEL,default=info"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=256"`
	TokenSecret          string        `env:"TOKEN_SECRET,required=true"`
	TokenDuration        time.Duration `env:"TOKEN_DURATION,default=24h"`
	CacheTTL             time.Duration `env:"CACHE_TTL,default=168h"`
	GCInterval           time.Duration `env:"GC_INTERVAL,default=10m"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	// Kept as a string: go-env parses rune fields as integer code points,
	// which would reject the literal default.
	CensorReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

// CensorRune converts the configured replacement to the single rune the
// moderator expects.
func (c Config) CensorRune() (rune, error) {
	runes := []rune(c.CensorReplacement)
	if len(runes) != 1 {
		return 0, fmt.Errorf("MODERATION_CHARACTER_REPLACEMENT must be exactly one character, got %q", c.CensorReplacement)
	}
	return runes[0], nil
}
