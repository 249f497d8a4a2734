package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/normalizer"
	"alfredoptarigan/resume-ranker/internal/services"
)

type CompanyHandler struct {
	companyService services.CompanyService
	log            *zap.Logger
}

func NewCompanyHandler(companyService services.CompanyService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		log:            log.Named("company_handler"),
	}
}

// decodeBody decodes the request into a generic map so list fields can arrive either
// as arrays or as comma-separated strings.
func decodeBody(c *fiber.Ctx) (map[string]interface{}, error) {
	var input map[string]interface{}
	if err := c.BodyParser(&input); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return input, nil
}

func (h *CompanyHandler) HandleCreate(c *fiber.Ctx) error {
	input, err := decodeBody(c)
	if err != nil {
		return respondError(c, err)
	}
	req, err := normalizer.DecodeCompany(input)
	if err != nil {
		return respondError(c, &services.ValidationError{Err: err})
	}

	company, outcome, err := h.companyService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.CompanyMutationResponse{
		Company:  company,
		Failures: failureResponses(uuid.Nil, outcome),
	})
}

func (h *CompanyHandler) HandleList(c *fiber.Ctx) error {
	companies, err := h.companyService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(companies)
}

func (h *CompanyHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	company, err := h.companyService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

func (h *CompanyHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}
	input, err := decodeBody(c)
	if err != nil {
		return respondError(c, err)
	}
	patch, err := normalizer.DecodeCompanyPatch(input)
	if err != nil {
		return respondError(c, &services.ValidationError{Err: err})
	}

	company, outcome, err := h.companyService.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.CompanyMutationResponse{
		Company:  company,
		Failures: failureResponses(uuid.Nil, outcome),
	})
}

func (h *CompanyHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.companyService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CompanyHandler) HandleLeaderboard(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	entries, err := h.companyService.Leaderboard(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return c.JSON(entries)
}

func (h *CompanyHandler) HandleReconcile(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	job, err := h.companyService.RequestReconcile(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	h.log.Info("reconcile requested", zap.String("company_id", id.String()), zap.String("job_id", job.ID.String()))
	return c.Status(fiber.StatusAccepted).JSON(models.ReconcileResponse{
		ID:     job.ID.String(),
		Status: string(job.Status),
	})
}
