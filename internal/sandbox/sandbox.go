// Package sandbox is a local stand-in for the Worklane platform backend. It
// implements exactly the REST and websocket contract the client consumes so
// the terminal UI can run end to end without the production services. It is
// a development tool, not a server implementation.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/worklane/worklane-client/internal/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultSigningSecret = "worklane-sandbox-dev"
	tokenIssuer          = "worklane-sandbox"
	shutdownTimeout      = 10 * time.Second
)

// Config describes the sandbox server.
type Config struct {
	DatabasePath  string
	HTTPAddress   string
	UploadDir     string
	SigningSecret string
	Logger        *zap.Logger
}

// Server is the assembled sandbox backend.
type Server struct {
	handler     http.Handler
	httpAddress string
	logger      *zap.Logger
}

// New opens the database, migrates and seeds it, and assembles the handler.
func New(cfg Config) (*Server, error) {
	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("sandbox: database path required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	secret := cfg.SigningSecret
	if secret == "" {
		secret = defaultSigningSecret
	}
	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = "worklane-uploads"
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("sandbox: create upload dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Account{}, &ChatRoom{}, &ChatMessage{}, &Notification{}, &Applicant{}); err != nil {
		return nil, err
	}
	if err := seed(db); err != nil {
		return nil, err
	}
	logger.Info("sandbox database ready", zap.String("path", cfg.DatabasePath))

	tokens, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte(secret),
		Issuer:        tokenIssuer,
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		handler:     newRouter(db, newHub(), tokens, uploadDir, logger),
		httpAddress: cfg.HTTPAddress,
		logger:      logger,
	}, nil
}

// Handler exposes the assembled router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.httpAddress,
		Handler: s.handler,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox starting", zap.String("address", s.httpAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
