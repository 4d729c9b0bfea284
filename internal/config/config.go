package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	Port                string
	DatabaseUser        string
	DatabasePassword    string
	DatabaseHost        string
	DatabasePort        string
	DatabaseName        string
	DatabaseSSLMode     string
	SessionKey          []byte
	Env                 string // either prod or dev, dev disables https redirects and secure cookies
	SentryDSN           string
	SiteName            string
	BadgeHashSalt       []byte        // PBKDF2 salt for badge payload signatures
	BadgeHashIterations int           // PBKDF2 iterations for badge payload signatures
	FaceCacheTTL        time.Duration // how long rendered badge faces stay cached
	URLProtocol         string
}

func LoadConfig() (Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		return Config{}, fmt.Errorf("PORT cannot be empty")
	}
	databaseUser := os.Getenv("DATABASE_USER")
	if databaseUser == "" {
		return Config{}, fmt.Errorf("DATABASE_USER cannot be empty")
	}
	databasePassword := os.Getenv("DATABASE_PASSWORD")
	if databasePassword == "" {
		return Config{}, fmt.Errorf("DATABASE_PASSWORD cannot be empty")
	}
	databaseHost := os.Getenv("DATABASE_HOST")
	if databaseHost == "" {
		return Config{}, fmt.Errorf("DATABASE_HOST cannot be empty")
	}
	databasePort := os.Getenv("DATABASE_PORT")
	if databasePort == "" {
		return Config{}, fmt.Errorf("DATABASE_PORT cannot be empty")
	}
	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return Config{}, fmt.Errorf("DATABASE_NAME cannot be empty")
	}
	databaseSSLMode := os.Getenv("DATABASE_SSL_MODE")
	if databaseSSLMode == "" {
		return Config{}, fmt.Errorf("DATABASE_SSL_MODE cannot be empty")
	}
	env := strings.ToLower(os.Getenv("ENV"))
	if env == "" {
		return Config{}, fmt.Errorf("ENV cannot be empty")
	}
	sessionKeyString := os.Getenv("SESSION_KEY")
	if sessionKeyString == "" {
		return Config{}, fmt.Errorf("SESSION_KEY cannot be empty")
	}
	sessionKeyBytes, err := base64.StdEncoding.DecodeString(sessionKeyString)
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to decode session key to bytes")
	}
	badgeHashSalt := os.Getenv("BADGE_HASH_SALT")
	if badgeHashSalt == "" {
		return Config{}, fmt.Errorf("BADGE_HASH_SALT cannot be empty")
	}
	badgeHashIterationsStr := os.Getenv("BADGE_HASH_ITERATIONS")
	if badgeHashIterationsStr == "" {
		return Config{}, fmt.Errorf("BADGE_HASH_ITERATIONS cannot be empty")
	}
	badgeHashIterations, err := strconv.Atoi(badgeHashIterationsStr)
	if err != nil {
		return Config{}, fmt.Errorf("could not convert ascii to int: %v", err)
	}
	if badgeHashIterations < 1 {
		return Config{}, fmt.Errorf("BADGE_HASH_ITERATIONS must be positive")
	}
	faceCacheTTL := 12 * time.Hour
	if s := os.Getenv("FACE_CACHE_TTL"); s != "" {
		faceCacheTTL, err = time.ParseDuration(s)
		if err != nil {
			return Config{}, errors.Wrap(err, "unable to parse FACE_CACHE_TTL")
		}
	}
	siteName := os.Getenv("SITE_NAME")
	if siteName == "" {
		siteName = "PrESTO"
	}
	sentryDSN := os.Getenv("SENTRY_DSN")
	urlProtocol := "http://"
	if !strings.EqualFold(env, "dev") {
		urlProtocol = "https://"
	}

	return Config{
		Port:                port,
		DatabaseUser:        databaseUser,
		DatabasePassword:    databasePassword,
		DatabaseHost:        databaseHost,
		DatabasePort:        databasePort,
		DatabaseName:        databaseName,
		DatabaseSSLMode:     databaseSSLMode,
		SessionKey:          sessionKeyBytes,
		Env:                 env,
		SentryDSN:           sentryDSN,
		SiteName:            siteName,
		BadgeHashSalt:       []byte(badgeHashSalt),
		BadgeHashIterations: badgeHashIterations,
		FaceCacheTTL:        faceCacheTTL,
		URLProtocol:         urlProtocol,
	}, nil
}
