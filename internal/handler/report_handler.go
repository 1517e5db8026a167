package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// ReportHandler exposes the asynchronous evaluation-summary export and the
// synchronous roster CSV.
type ReportHandler struct {
	reports *service.ReportService
	metrics *service.MetricsService
}

// NewReportHandler creates a new handler.
func NewReportHandler(reports *service.ReportService, metrics *service.MetricsService) *ReportHandler {
	return &ReportHandler{reports: reports, metrics: metrics}
}

// EnqueueReport godoc
// @Summary Queue an evaluation summary PDF
// @Tags Reports
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applicants/{id}/report [post]
func (h *ReportHandler) EnqueueReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.reports.Enqueue(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordReportJob(string(job.Status))

	response.JSON(c, http.StatusAccepted, job, nil)
}

// ReportStatus godoc
// @Summary Report job status
// @Description Completed jobs include a signed, expiring download token
// @Tags Reports
// @Produce json
// @Param id path string true "Report job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/reports/{id} [get]
func (h *ReportHandler) ReportStatus(c *gin.Context) {
	job, err := h.reports.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// DownloadReport godoc
// @Summary Download a generated report
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Report job ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /admin/reports/{id}/download [get]
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	download, err := h.reports.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", "application/pdf")
	http.ServeContent(c.Writer, c.Request, download.Filename, time.Time{}, download.File)
}

// ExportRoster godoc
// @Summary Export the applicant roster as CSV
// @Tags Reports
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Router /admin/applicants/export [get]
func (h *ReportHandler) ExportRoster(c *gin.Context) {
	data, err := h.reports.RosterCSV(c.Request.Context(), applicantFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="applicants.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
