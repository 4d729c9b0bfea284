package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T) {
	for k, v := range map[string]string{
		"PORT":                  "9876",
		"DATABASE_USER":         "presto",
		"DATABASE_PASSWORD":     "secret",
		"DATABASE_HOST":         "localhost",
		"DATABASE_PORT":         "5432",
		"DATABASE_NAME":         "presto",
		"DATABASE_SSL_MODE":     "disable",
		"ENV":                   "DEV",
		"SESSION_KEY":           "c2Vzc2lvbi1rZXk=",
		"BADGE_HASH_SALT":       "salt",
		"BADGE_HASH_ITERATIONS": "1000",
		"FACE_CACHE_TTL":        "",
		"SITE_NAME":             "",
		"SENTRY_DSN":            "",
	} {
		t.Setenv(k, v)
	}
}

func TestLoadConfig(t *testing.T) {
	setEnv(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, []byte("session-key"), cfg.SessionKey)
	assert.Equal(t, []byte("salt"), cfg.BadgeHashSalt)
	assert.Equal(t, 1000, cfg.BadgeHashIterations)
	assert.Equal(t, 12*time.Hour, cfg.FaceCacheTTL)
	assert.Equal(t, "PrESTO", cfg.SiteName)
	assert.Equal(t, "http://", cfg.URLProtocol)
}

func TestLoadConfigErrors(t *testing.T) {
	cases := map[string]string{
		"BADGE_HASH_SALT":       "",
		"BADGE_HASH_ITERATIONS": "0",
		"SESSION_KEY":           "not base64!",
		"FACE_CACHE_TTL":        "soon",
		"PORT":                  "",
	}
	for k, v := range cases {
		t.Run(k, func(t *testing.T) {
			setEnv(t)
			t.Setenv(k, v)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
