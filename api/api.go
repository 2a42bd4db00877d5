package api

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/logger"
)

// Server exposes read-only archive queries.
type Server struct {
	config Config
	driver archive.Driver
	logger *slog.Logger
	app    *fiber.App
}

// NewServer wires routes over driver. The caller owns driver and closes it
// after Shutdown.
func NewServer(config Config, driver archive.Driver, l *slog.Logger) *Server {
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if l == nil {
		l = logger.Nop()
	}

	s := &Server{
		config: config,
		driver: driver,
		logger: l,
		app: fiber.New(fiber.Config{
			DisableStartupMessage: true,
		}),
	}

	s.app.Use(s.logRequest)
	s.app.Get("/ping", s.handlePing)

	v1 := s.app.Group("/v1")
	v1.Get("/answers", s.handleListAnswers)
	v1.Get("/answers/:id", s.handleGetAnswer)

	return s
}

// Run blocks serving on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server", "listen", s.config.ListenAddr)
	return s.app.Listen(s.config.ListenAddr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Debug("api request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}
