package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under router, usually the /api/v1 group.
func RegisterRoutes(router fiber.Router, resumes *ResumeHandler, companies *CompanyHandler) {
	router.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	router.Post("/resumes", resumes.HandleUpload)
	router.Get("/resumes", resumes.HandleList)
	router.Get("/resumes/search", resumes.HandleSearch)
	router.Get("/resumes/:id", resumes.HandleGet)
	router.Delete("/resumes/:id", resumes.HandleDelete)

	router.Post("/companies", companies.HandleCreate)
	router.Get("/companies", companies.HandleList)
	router.Get("/companies/:id", companies.HandleGet)
	router.Put("/companies/:id", companies.HandleUpdate)
	router.Delete("/companies/:id", companies.HandleDelete)
	router.Get("/companies/:id/resumes", companies.HandleLeaderboard)
	router.Post("/companies/:id/reconcile", companies.HandleReconcile)
}
