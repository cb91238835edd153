package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/meetmail/internal/domain/export"
	"github.com/yanqian/meetmail/internal/domain/mailgen"
	apperrors "github.com/yanqian/meetmail/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	mailSvc   mailgen.Service
	exportSvc export.Service
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(mailSvc mailgen.Service, exportSvc export.Service, logger *slog.Logger) *Handler {
	return &Handler{
		mailSvc:   mailSvc,
		exportSvc: exportSvc,
		logger:    logger.With("component", "http.handler"),
	}
}

// GenerateEmail turns meeting notes into a formatted email draft.
func (h *Handler) GenerateEmail(c *gin.Context) {
	var req mailgen.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.mailSvc.Generate(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "generate_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "generation_failed"):
			status = http.StatusBadGateway
			code = "generation_failed"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ExportEmail returns compose deep links and an .eml rendering.
func (h *Handler) ExportEmail(c *gin.Context) {
	var req export.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	res, err := h.exportSvc.Export(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "export_failed"
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, res)
}

// RecentDrafts lists the newest generated drafts.
func (h *Handler) RecentDrafts(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	drafts, err := h.mailSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "history_failed", errMessage(err), err))
		return
	}
	if drafts == nil {
		drafts = []mailgen.DraftRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"drafts": drafts})
}

// DraftStats reports how often each tone has been requested.
func (h *Handler) DraftStats(c *gin.Context) {
	limit := intQuery(c, "limit", 10)
	tones, err := h.mailSvc.ToneStats(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stats_failed", errMessage(err), err))
		return
	}
	if tones == nil {
		tones = []mailgen.ToneCount{}
	}
	c.JSON(http.StatusOK, gin.H{"tones": tones})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
