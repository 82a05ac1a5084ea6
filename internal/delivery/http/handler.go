package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillmatch/backend/internal/domain"
)

// multipartOverhead is the room left for form fields and boundaries around the resume file
const multipartOverhead = 1 << 20

// AnalysisUsecase is what the handlers need from the analysis service
type AnalysisUsecase interface {
	Analyze(ctx context.Context, request *domain.AnalysisRequest) (*domain.Analysis, error)
	ResumeFromDocument(filename string, data []byte) (string, error)
	Roles() []domain.Role
	RoleSkills(name string) (domain.SkillSet, error)
	Report(ctx context.Context, id string) ([]byte, error)
	Chart(ctx context.Context, id string) ([]byte, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysis       AnalysisUsecase
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler. A nil usecase makes API endpoints answer 501.
func NewHandler(analysis AnalysisUsecase, maxUploadBytes int64) *Handler {
	return &Handler{
		analysis:       analysis,
		maxUploadBytes: maxUploadBytes,
	}
}

// roleResponse is a catalog entry with its extracted skills
type roleResponse struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Skills      []string `json:"skills"`
}

// analysisResponse adds download links to an analysis
type analysisResponse struct {
	*domain.Analysis
	ReportURL string `json:"reportUrl,omitempty"`
	ChartURL  string `json:"chartUrl,omitempty"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "skillmatch-backend",
		"version": "1.0.0",
	})
}

// ListRoles returns the role catalog with the skills each role asks for
func (h *Handler) ListRoles(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	roles := h.analysis.Roles()
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		skills, err := h.analysis.RoleSkills(role.Name)
		if err != nil {
			h.respondError(c, err)
			return
		}
		out = append(out, roleResponse{
			Name:        role.Name,
			Description: role.Description,
			Skills:      skills.Sorted(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"roles": out,
		"count": len(out),
	})
}

// Analyze handles JSON analysis requests
func (h *Handler) Analyze(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	var req domain.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	h.analyze(c, &req)
}

// AnalyzeUpload handles multipart requests carrying the resume as a file
func (h *Handler) AnalyzeUpload(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "A resume file is required in the 'resume' field",
			"details": err.Error(),
		})
		return
	}
	if header.Size > h.maxUploadBytes {
		h.respondTooLarge(c)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		h.respondError(c, fmt.Errorf("read upload: %w", err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		h.respondTooLarge(c)
		return
	}

	text, err := h.analysis.ResumeFromDocument(header.Filename, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.analyze(c, &domain.AnalysisRequest{
		ResumeText:     text,
		Role:           c.PostForm("role"),
		JobDescription: c.PostForm("jobDescription"),
		JobURL:         c.PostForm("jobUrl"),
	})
}

// DownloadReport serves the PDF report of an analysis
func (h *Handler) DownloadReport(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	data, err := h.analysis.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, domain.ReportFilename))
	c.Data(http.StatusOK, domain.ReportContentType, data)
}

// DownloadChart serves the PNG chart of an analysis
func (h *Handler) DownloadChart(c *gin.Context) {
	if !h.configured(c) {
		return
	}

	data, err := h.analysis.Chart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

func (h *Handler) analyze(c *gin.Context, req *domain.AnalysisRequest) {
	analysis, err := h.analysis.Analyze(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := analysisResponse{Analysis: analysis}
	if analysis.HasReport() {
		resp.ReportURL = fmt.Sprintf("/api/v1/reports/%s", analysis.ReportID)
		resp.ChartURL = fmt.Sprintf("/api/v1/reports/%s/chart", analysis.ReportID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) configured(c *gin.Context) bool {
	if h.analysis == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "Analysis service not configured",
		})
		return false
	}
	return true
}

func (h *Handler) respondTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("Resume file exceeds %d bytes", h.maxUploadBytes),
	})
}

// respondError maps domain errors to status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := statusFor(err)

	body := gin.H{"error": err.Error()}
	if errors.Is(err, domain.ErrEmptyResume) {
		body["warning"] = domain.EmptyResumeWarning
	}
	if status >= http.StatusInternalServerError {
		log.Printf("[ANALYZE] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		if status == http.StatusInternalServerError {
			body["error"] = "Internal server error"
		}
	}

	c.JSON(status, body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyResume),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRoleNotFound),
		errors.Is(err, domain.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFetchDisabled):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, domain.ErrPostingNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrFetchFailure):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrCacheUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
