package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/askstream/pkg/archive"
)

// defaultListLimit applies when the limit query parameter is absent.
const defaultListLimit = 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListResponse wraps a page of archived answers.
type ListResponse struct {
	Count   int               `json:"count"`
	Answers []*archive.Record `json:"answers"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListAnswers returns archived answers, newest first. limit=0 returns
// every answer.
func (s *Server) handleListAnswers(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = n
	}

	records, err := s.driver.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list answers", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list answers"})
	}
	if records == nil {
		records = []*archive.Record{}
	}

	return c.JSON(ListResponse{
		Count:   len(records),
		Answers: records,
	})
}

// handleGetAnswer returns a single archived answer by its request id.
func (s *Server) handleGetAnswer(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	rec, err := s.driver.Get(c.Context(), id)
	if err != nil {
		var notFound archive.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "answer not found"})
		}
		s.logger.Error("failed to get answer", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get answer"})
	}

	return c.JSON(rec)
}
