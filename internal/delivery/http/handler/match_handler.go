package handler

import (
	"context"
	"errors"

	"trade-match/internal/delivery/http/dto"
	"trade-match/internal/delivery/http/middleware"
	"trade-match/internal/domain/match"
	"trade-match/internal/pkg/response"
	"trade-match/internal/queue"
	"trade-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// TaskEnqueuer hands a matching run off to the background worker.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type MatchHandler struct {
	enqueuer TaskEnqueuer
	matches  usecase.MatchUsecase
}

func NewMatchHandler(enqueuer TaskEnqueuer, matches usecase.MatchUsecase) *MatchHandler {
	return &MatchHandler{enqueuer: enqueuer, matches: matches}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	jobs := r.Group("/jobs")
	jobs.Post("/:job_id/match", h.TriggerMatch)
	jobs.Get("/:job_id/matches", h.ListMatches)

	matches := r.Group("/matches")
	matches.Patch("/:match_id/status", h.UpdateStatus)
}

// TriggerMatch enqueues a matching run and returns immediately; the
// caller watches the websocket or polls ListMatches for the outcome.
func (h *MatchHandler) TriggerMatch(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid job id", err)
	}

	if err := h.enqueuer.Enqueue(c.Context(), queue.Task{JobID: jobID}); err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}

	return response.Success(c, fiber.StatusAccepted, response.MessageAccepted, dto.MatchTriggerResponse{
		JobID:  jobID,
		Queued: true,
	})
}

func (h *MatchHandler) ListMatches(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid job id", err)
	}

	items, err := h.matches.ListByJob(c.Context(), jobID)
	if err != nil {
		return mapMatchUsecaseError(err)
	}

	out := make([]dto.MatchResponse, 0, len(items))
	for _, m := range items {
		out = append(out, dto.NewMatchResponse(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) UpdateStatus(c fiber.Ctx) error {
	matchID, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid match id", err)
	}

	var req dto.UpdateMatchStatusRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid request body", err)
	}

	status := match.Status(req.Status)
	switch status {
	case match.StatusAssigned, match.StatusDeclined, match.StatusCompleted:
	default:
		return middleware.NewAppError(fiber.StatusBadRequest, "invalid status", nil)
	}

	m, err := h.matches.UpdateStatus(c.Context(), matchID, status)
	if err != nil {
		return mapMatchUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

func mapMatchUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrJobNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "job not found", err)
	case errors.Is(err, usecase.ErrMatchNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "match not found", err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, "invalid status transition", err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}
}
