package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/scoring"
	"alfredoptarigan/resume-ranker/internal/services"
)

// statusFor maps service errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	var parsing *services.ParsingFailure
	var invalid *services.ValidationError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	case errors.As(err, &parsing), errors.As(err, &invalid):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUnsupportedFile), errors.Is(err, services.ErrDuplicate):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNoCompanies):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrIndexDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// failureResponses flattens per-company ranking failures for the client.
func failureResponses(resumeID uuid.UUID, outcome *services.RankingOutcome) []models.FailureResponse {
	if outcome == nil {
		return nil
	}

	var out []models.FailureResponse
	for _, err := range outcome.Failures {
		resp := models.FailureResponse{Error: err.Error()}
		if resumeID != uuid.Nil {
			resp.ResumeID = resumeID.String()
		}

		var scoringErr *scoring.Failure
		var persistErr *services.PersistenceFailure
		switch {
		case errors.As(err, &scoringErr):
			resp.CompanyID = scoringErr.CompanyID.String()
			resp.CompanyName = scoringErr.CompanyName
		case errors.As(err, &persistErr) && persistErr.CompanyID != uuid.Nil:
			resp.CompanyID = persistErr.CompanyID.String()
		}
		out = append(out, resp)
	}
	return out
}
