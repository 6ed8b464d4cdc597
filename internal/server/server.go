package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"

	"vanish-go/internal/config"
	"vanish-go/internal/database"
	"vanish-go/internal/metrics"
	"vanish-go/internal/storage"
	"vanish-go/internal/vault"
)

// Server represents the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	db           *database.DB
	payloads     storage.Provider
	metrics      *metrics.Metrics
	vaultService *vault.Service
	vaultHandler *vault.Handler
	sweepWorker  *vault.SweepWorker
}

// NewServer creates a new server instance. db may be nil when the
// filesystem metadata backend is configured.
func NewServer(cfg *config.Config, db *database.DB) (*Server, error) {
	var meta vault.MetadataStore
	var err error
	switch cfg.MetadataBackend {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres metadata backend requires a database connection")
		}
		meta = vault.NewPostgresStore(db.DB)
	default:
		meta, err = vault.NewFSStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("creating metadata store: %w", err)
		}
	}

	payloads, err := storage.NewProvider(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("creating storage provider: %w", err)
	}

	m := metrics.New()
	vaultService := vault.NewService(meta, payloads, cfg, m)
	vaultHandler := vault.NewHandler(vaultService)
	sweepWorker := vault.NewSweepWorker(vaultService, cfg.SweepInterval)

	return &Server{
		config:       cfg,
		db:           db,
		payloads:     payloads,
		metrics:      m,
		vaultService: vaultService,
		vaultHandler: vaultHandler,
		sweepWorker:  sweepWorker,
	}, nil
}

// Start initializes the HTTP server and launches the background sweep worker
func (s *Server) Start(ctx context.Context) *http.Server {
	s.sweepWorker.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info().
		Int("port", s.config.Port).
		Str("env", s.config.Env).
		Msg("starting server")

	return srv
}

// Shutdown stops the sweep worker and releases held resources
func (s *Server) Shutdown() {
	s.sweepWorker.Stop()
	if err := s.payloads.Close(); err != nil {
		log.Error().Err(err).Msg("closing storage provider")
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error().Err(err).Msg("closing database")
		}
	}
}
