package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 50
)

type ResumeHandler struct {
	resumeService services.ResumeService
	maxFileSize   int64
	log           *zap.Logger
}

func NewResumeHandler(resumeService services.ResumeService, maxFileSize int64, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{
		resumeService: resumeService,
		maxFileSize:   maxFileSize,
		log:           log.Named("resume_handler"),
	}
}

func (h *ResumeHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file uploaded, send the resume in the 'resume' field",
		})
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	result, err := h.resumeService.Upload(c.UserContext(), file)
	if err != nil {
		h.log.Warn("resume upload rejected", zap.String("file", file.Filename), zap.Error(err))
		return respondError(c, err)
	}

	status := fiber.StatusOK
	message := "Resume updated and rankings recomputed"
	if result.Created {
		status = fiber.StatusCreated
		message = "Resume uploaded and ranked"
	}

	resp := models.UploadResponse{
		Message:  message,
		Resume:   resumeResponse(result.Resume, result.Outcome),
		Failures: failureResponses(result.Resume.ID, result.Outcome),
	}
	if len(resp.Failures) > 0 {
		h.log.Warn("resume ranked with failures",
			append(logger.ResumeFields(result.Resume.ID, result.Resume.Email), zap.Int("failures", len(resp.Failures)))...)
	}
	return c.Status(status).JSON(resp)
}

func resumeResponse(resume *models.Resume, outcome *services.RankingOutcome) models.ResumeResponse {
	resp := models.ResumeResponse{
		ID:       resume.ID.String(),
		Name:     resume.Name,
		Email:    resume.Email,
		Rankings: []models.RankingResponse{},
	}
	if outcome == nil {
		return resp
	}
	for _, s := range outcome.Standings {
		resp.Rankings = append(resp.Rankings, models.RankingResponse{
			CompanyID:   s.CompanyID,
			CompanyName: s.CompanyName,
			Score:       s.Score,
			Rank:        s.Rank,
		})
	}
	return resp
}

func (h *ResumeHandler) HandleList(c *fiber.Ctx) error {
	resumes, err := h.resumeService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resumes)
}

func (h *ResumeHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	resume, rankings, err := h.resumeService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	resp := models.ResumeResponse{
		ID:       resume.ID.String(),
		Name:     resume.Name,
		Email:    resume.Email,
		Rankings: make([]models.RankingResponse, 0, len(rankings)),
	}
	for _, rk := range rankings {
		r := models.RankingResponse{CompanyID: rk.CompanyID, Score: rk.Score, Rank: rk.Rank}
		if rk.Company != nil {
			r.CompanyName = rk.Company.Name
		}
		resp.Rankings = append(resp.Rankings, r)
	}
	return c.JSON(resp)
}

func (h *ResumeHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.resumeService.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ResumeHandler) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'q' is required",
		})
	}

	limit := c.QueryInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := h.resumeService.Search(c.UserContext(), query, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(hits)
}
