package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/discogs-bridge/auth"
	"github.com/jrsteele09/discogs-bridge/auth/sessions"
	"github.com/jrsteele09/discogs-bridge/discogs"
	"github.com/jrsteele09/discogs-bridge/internal/config"
	"github.com/jrsteele09/discogs-bridge/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	displayAppname(cfg.GetAppName())

	client, err := discogs.NewClient(
		discogs.Consumer{Key: cfg.GetConsumerKey(), Secret: cfg.GetConsumerSecret()},
		discogs.WithUserAgent(cfg.GetUserAgent()),
	)
	if err != nil {
		return fmt.Errorf("discogs client: %w", err)
	}

	sessionRepo, err := newSessionRepo(cfg, logger)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	handshake, err := auth.NewService(client, sessionRepo, cfg.GetBaseURL()+server.RouteCallback)
	if err != nil {
		return fmt.Errorf("handshake service: %w", err)
	}

	srv, err := server.New(cfg, handshake, client, logger)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.GetPort(), Handler: srv}
	go listenAndServe(httpServer, logger)
	waitForStopSignal()
	return shutdown(httpServer)
}

// newSessionRepo selects the session store backing: Redis when an address is
// configured, the in-memory map otherwise.
func newSessionRepo(cfg config.Config, logger zerolog.Logger) (sessions.Repo, error) {
	address := cfg.GetRedisAddress()
	if address == "" {
		logger.Info().Msg("using in-memory session store")
		return sessions.NewInMemoryRepo(cfg.GetSessionMaxAge()), nil
	}

	rdb, err := sessions.Dial(address, cfg.GetRedisPassword(), cfg.GetRedisDB())
	if err != nil {
		return nil, err
	}
	logger.Info().Str("address", address).Msg("using redis session store")
	return sessions.NewRedisRepo(rdb, cfg.GetSessionMaxAge()), nil
}

func listenAndServe(srv *http.Server, logger zerolog.Logger) {
	logger.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
