package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"jobboard_backend/internal/aggregator"
	"jobboard_backend/internal/logger"
	"jobboard_backend/internal/middleware"
	"jobboard_backend/internal/services"
	"jobboard_backend/internal/services/dto"
	"jobboard_backend/pkg/apperrors"
)

type JobHandler struct {
	*BaseHandler
	jobService        services.JobService
	aggregatorService services.AggregatorService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService, aggregatorService services.AggregatorService) *JobHandler {
	return &JobHandler{
		BaseHandler:       base,
		jobService:        jobService,
		aggregatorService: aggregatorService,
	}
}

func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware())
	{
		jobs.GET("", h.List)
		jobs.POST("", h.Create)
		// Registered before /:id so gin does not treat it as an id.
		jobs.GET("/external", h.External)
		jobs.GET("/:id", h.Get)
		jobs.PUT("/:id", h.Update)
		jobs.DELETE("/:id", h.Delete)
		jobs.POST("/:id/apply", h.Apply)
		jobs.DELETE("/:id/apply", h.Unapply)
		jobs.POST("/:id/save", h.Save)
		jobs.DELETE("/:id/save", h.Unsave)
	}
}

// List handles GET /api/v1/jobs with search and filter query params.
func (h *JobHandler) List(c *gin.Context) {
	var req dto.ListJobsRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.jobService.List(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/v1/jobs/:id.
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	if jobID == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing job id"))
		return
	}

	resp, err := h.jobService.Get(h.GetDB(c), jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/v1/jobs.
func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.jobService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Update handles PUT /api/v1/jobs/:id. Only the poster may update.
func (h *JobHandler) Update(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.jobService.Update(h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /api/v1/jobs/:id. Soft delete: applied and
// saved references keep resolving.
func (h *JobHandler) Delete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.jobService.Delete(h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

// Apply handles POST /api/v1/jobs/:id/apply.
func (h *JobHandler) Apply(c *gin.Context) {
	h.jobAction(c, h.jobService.Apply, "Application recorded")
}

// Unapply handles DELETE /api/v1/jobs/:id/apply.
func (h *JobHandler) Unapply(c *gin.Context) {
	h.jobAction(c, h.jobService.Unapply, "Application withdrawn")
}

// Save handles POST /api/v1/jobs/:id/save.
func (h *JobHandler) Save(c *gin.Context) {
	h.jobAction(c, h.jobService.Save, "Job saved")
}

// Unsave handles DELETE /api/v1/jobs/:id/save.
func (h *JobHandler) Unsave(c *gin.Context) {
	h.jobAction(c, h.jobService.Unsave, "Job unsaved")
}

func (h *JobHandler) jobAction(c *gin.Context, action func(db *gorm.DB, userID, jobID string) error, message string) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := action(h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// External handles GET /api/v1/jobs/external: a proxied search against
// the external job aggregator.
func (h *JobHandler) External(c *gin.Context) {
	var req dto.ExternalSearchRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	resp, err := h.aggregatorService.Search(c.Request.Context(), &req)
	if err != nil {
		// Upstream answers are relayed byte-for-byte, status included.
		var upErr *aggregator.UpstreamError
		if errors.As(err, &upErr) && upErr.Status > 0 {
			logger.CtxWarn(c.Request.Context(), "Upstream job search failed",
				"status", upErr.Status, "path", c.Request.URL.Path)
			contentType := upErr.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Data(upErr.Status, contentType, []byte(upErr.Body))
			return
		}
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"jobs": resp, "count": len(resp)})
}
