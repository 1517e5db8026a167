package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// AssessorHandler serves the evaluator worklist and evaluation endpoints.
// Every applicant-scoped route checks the assignment first, so assessors only
// ever see their own panel.
type AssessorHandler struct {
	assignments *service.AssignmentService
	applicants  *service.ApplicantService
	evaluations *service.EvaluationService
	documents   *service.DocumentService
	metrics     *service.MetricsService
}

// NewAssessorHandler creates a new handler.
func NewAssessorHandler(assignments *service.AssignmentService, applicants *service.ApplicantService, evaluations *service.EvaluationService, documents *service.DocumentService, metrics *service.MetricsService) *AssessorHandler {
	return &AssessorHandler{
		assignments: assignments,
		applicants:  applicants,
		evaluations: evaluations,
		documents:   documents,
		metrics:     metrics,
	}
}

// AssignedApplicants godoc
// @Summary List applicants assigned to the assessor
// @Tags Assessors
// @Produce json
// @Param status query string false "Filter by applicant status"
// @Success 200 {object} response.Envelope
// @Router /assessor/applicants [get]
func (h *AssessorHandler) AssignedApplicants(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	status := models.ApplicantStatus(c.Query("status"))
	assigned, err := h.assignments.ListForAssessor(c.Request.Context(), claims.UserID, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assigned, nil)
}

// ApplicantDetail godoc
// @Summary Assigned applicant detail
// @Tags Assessors
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessor/applicants/{id} [get]
func (h *AssessorHandler) ApplicantDetail(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	applicantID := c.Param("id")

	if err := h.assignments.EnsureAssigned(c.Request.Context(), applicantID, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	detail, err := h.applicants.Profile(c.Request.Context(), applicantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// ApplicantDocuments godoc
// @Summary Assigned applicant documents
// @Tags Assessors
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Router /assessor/applicants/{id}/documents [get]
func (h *AssessorHandler) ApplicantDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	applicantID := c.Param("id")

	if err := h.assignments.EnsureAssigned(c.Request.Context(), applicantID, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	grouped, err := h.documents.ListByOwner(c.Request.Context(), applicantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grouped, nil)
}

// DownloadApplicantDocument godoc
// @Summary Download an assigned applicant's document
// @Tags Assessors
// @Produce octet-stream
// @Param id path string true "Applicant ID"
// @Param fileId path string true "Document ID"
// @Success 200 {file} binary
// @Router /assessor/applicants/{id}/documents/{fileId} [get]
func (h *AssessorHandler) DownloadApplicantDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	applicantID := c.Param("id")

	if err := h.assignments.EnsureAssigned(c.Request.Context(), applicantID, claims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	doc, content, err := h.documents.Fetch(c.Request.Context(), c.Param("fileId"), applicantID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, content)
}

// SubmitEvaluation godoc
// @Summary Submit a draft evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.SubmitEvaluationRequest true "Section scores"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessor/evaluations [post]
func (h *AssessorHandler) SubmitEvaluation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SubmitEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evaluation payload"))
		return
	}

	evaluation, err := h.evaluations.Submit(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordEvaluationSubmitted()

	response.Created(c, "Evaluation submitted", evaluation)
}

// LatestEvaluation godoc
// @Summary Assessor's latest evaluation for an applicant
// @Description Pre-fills the evaluation form with the most recent submission
// @Tags Evaluations
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessor/applicants/{id}/evaluation [get]
func (h *AssessorHandler) LatestEvaluation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	evaluation, err := h.evaluations.LatestByAssessor(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// FinalizeEvaluation godoc
// @Summary Finalize the applicant's most recent evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.FinalizeEvaluationRequest true "Final comments"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /assessor/evaluations/finalize [post]
func (h *AssessorHandler) FinalizeEvaluation(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.FinalizeEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid finalize payload"))
		return
	}

	evaluation, err := h.evaluations.Finalize(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordEvaluationFinalized(evaluation.IsPassed)

	response.Message(c, "Evaluation finalized", evaluation)
}
