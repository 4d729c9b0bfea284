package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/getsentry/raven-go"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/presto-relay/presto/internal/badge"
	"github.com/presto-relay/presto/internal/config"
	"github.com/presto-relay/presto/internal/middleware"
	"github.com/presto-relay/presto/internal/session"
)

type Server struct {
	cfg      config.Config
	router   *mux.Router
	Keys     *session.Keys
	Badges   *badge.Engine
	bigCache *bigcache.BigCache
	Logger   zerolog.Logger
}

func NewServer(
	cfg config.Config,
	store badge.Store,
	r *mux.Router,
	sessionStore sessions.Store,
) Server {
	raven.SetDSN(cfg.SentryDSN)

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
	if cfg.Env == "dev" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	hasher := badge.Hasher{Salt: cfg.BadgeHashSalt, Iterations: cfg.BadgeHashIterations}
	svr := Server{
		cfg:    cfg,
		router: r,
		Keys:   session.NewKeys(sessionStore),
		Logger: logger,
	}
	bigCache, err := bigcache.NewBigCache(bigcache.DefaultConfig(cfg.FaceCacheTTL))
	if err != nil {
		svr.Log(err, "unable to initialise big cache")
		svr.Badges = badge.NewEngine(store, hasher, nil, logger)
		return svr
	}
	svr.bigCache = bigCache
	svr.Badges = badge.NewEngine(store, hasher, bigCache, logger)

	return svr
}

func (s Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

func (s Server) GetConfig() config.Config {
	return s.cfg
}

func (s Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// MEDIA writes an image. Badges are certified anew on every request, so
// responses are not cacheable.
func (s Server) MEDIA(w http.ResponseWriter, status int, media []byte, mediaType string) {
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write(media)
}

func (s Server) Log(err error, msg string) {
	raven.CaptureErrorAndWait(err, map[string]string{"ctx": msg})
	s.Logger.Error().Err(err).Msg(msg)
}

// Handler is the router wrapped in the middleware chain.
func (s Server) Handler() http.Handler {
	return middleware.HTTPSMiddleware(
		middleware.LoggingMiddleware(middleware.HeadersMiddleware(s.router, s.cfg.Env), s.Logger),
		s.cfg.Env,
	)
}

func (s Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	if s.cfg.Env == "dev" {
		s.Logger.Info().Msgf("local env http://localhost:%s", s.cfg.Port)
		addr = fmt.Sprintf("localhost:%s", s.cfg.Port)
	}
	return http.ListenAndServe(addr, s.Handler())
}

func (s Server) CacheLen() int {
	if s.bigCache == nil {
		return 0
	}
	return s.bigCache.Len()
}
