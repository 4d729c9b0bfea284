package main

import (
	"log"
	"net/http"

	"github.com/presto-relay/presto/internal/badge"
	"github.com/presto-relay/presto/internal/config"
	"github.com/presto-relay/presto/internal/database"
	"github.com/presto-relay/presto/internal/handler"
	"github.com/presto-relay/presto/internal/server"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("unable to load config: %+v", err)
	}
	conn, err := database.GetDbConn(cfg.DatabaseUser, cfg.DatabasePassword, cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseName, cfg.DatabaseSSLMode)
	if err != nil {
		log.Fatalf("unable to connect to postgres: %v", err)
	}
	defer database.CloseDbConn(conn)

	badgeRepo := badge.NewRepository(conn)
	if err := badgeRepo.CreateTable(); err != nil {
		log.Fatalf("unable to create badge table: %v", err)
	}

	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   cfg.Env != "dev",
		SameSite: http.SameSiteLaxMode,
	}

	svr := server.NewServer(
		cfg,
		badgeRepo,
		mux.NewRouter(),
		sessionStore,
	)

	// certified badge images
	svr.RegisterRoute("/badge/{token}.png", handler.BadgeImageHandler(svr), []string{"GET"})
	svr.RegisterRoute("/badge/{token}/thumb.png", handler.BadgeThumbnailHandler(svr), []string{"GET"})

	// badge verification upload
	svr.RegisterRoute("/x/badge/verify", handler.VerifyBadgeHandler(svr), []string{"POST"})

	// session key rotation
	svr.RegisterRoute("/x/session/rotate", handler.RotateSessionKeyHandler(svr), []string{"POST"})

	svr.RegisterRoute("/x/status", handler.StatusHandler(svr), []string{"GET"})

	if cfg.Env == "dev" {
		svr.RegisterRoute("/x/t/{id}", handler.IssueTokenHandler(svr), []string{"GET"})
	}

	log.Fatal(svr.Run())
}
