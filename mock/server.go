// Package mock provides a local answer endpoint that streams scripted or
// recorded SSE responses.
package mock

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/askstream/pkg/logger"
)

// DefaultListenAddr is the address the mock server listens on.
const DefaultListenAddr = ":8088"

// Config is the mock server configuration.
type Config struct {
	// ListenAddr is the address to listen on.
	ListenAddr string

	// ReplayPath, when set, is a raw recorded stream served verbatim to
	// every ask instead of the script.
	ReplayPath string

	// Script is the scripted answer. Defaults to DefaultScript.
	Script *Script

	// FrameDelay is the pause between frames.
	FrameDelay time.Duration

	// ChunkSize, when positive, splits every write into pieces of at most
	// this many bytes, so frames reach the client across several reads.
	ChunkSize int
}

type askRequest struct {
	Question string `json:"question"`
}

// ErrorResponse is the body of every non-streaming error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the mock answer server.
type Server struct {
	config Config
	script Script
	replay []byte
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new mock server. The replay file, if any, is read
// once up front.
func NewServer(config Config, l *slog.Logger) (*Server, error) {
	if l == nil {
		l = logger.Nop()
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}

	s := &Server{
		config: config,
		script: DefaultScript(),
		logger: l,
	}
	if config.Script != nil {
		s.script = *config.Script
	}

	if config.ReplayPath != "" {
		b, err := os.ReadFile(config.ReplayPath)
		if err != nil {
			return nil, fmt.Errorf("reading replay file: %w", err)
		}
		s.replay = b
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Get("/ping", s.handlePing)
	app.Post("/ask", s.handleAsk)

	s.app = app
	return s, nil
}

// Handler exposes the server as a net/http handler.
func (s *Server) Handler() http.HandlerFunc {
	return adaptor.FiberApp(s.app)
}

// Run starts the server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting mock server",
		"listen", s.config.ListenAddr,
		"replay", s.config.ReplayPath,
		"delay", s.config.FrameDelay,
		"chunk_size", s.config.ChunkSize,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON(map[string]string{"status": "ok"})
}

func (s *Server) handleAsk(c *fiber.Ctx) error {
	var req askRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" && s.replay == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	var chunks []string
	if s.replay != nil {
		chunks = []string{string(s.replay)}
	} else {
		frames, err := s.script.Frames(req.Question)
		if err != nil {
			s.logger.Error("rendering script", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
		}
		chunks = frames
	}

	s.logger.Debug("streaming answer",
		"question", req.Question,
		"frames", len(chunks),
		"replay", s.replay != nil,
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")

	// fasthttp flushes every chunk read from the pipe, so each frame reaches
	// the client on its own.
	pr, pw := io.Pipe()
	go s.writeChunks(pw, chunks)
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

func (s *Server) writeChunks(pw *io.PipeWriter, chunks []string) {
	defer pw.Close()

	for i, chunk := range chunks {
		if i > 0 && s.config.FrameDelay > 0 {
			time.Sleep(s.config.FrameDelay)
		}
		for _, piece := range split(chunk, s.config.ChunkSize) {
			if _, err := io.WriteString(pw, piece); err != nil {
				s.logger.Debug("client went away", "error", err)
				return
			}
		}
	}
}

// split cuts s into pieces of at most size bytes, ignoring character
// boundaries.
func split(s string, size int) []string {
	if size <= 0 || len(s) <= size {
		return []string{s}
	}

	pieces := make([]string, 0, len(s)/size+1)
	for len(s) > size {
		pieces = append(pieces, s[:size])
		s = s[size:]
	}
	return append(pieces, s)
}
