package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// ApplicantHandler serves the applicant's own profile and document endpoints.
type ApplicantHandler struct {
	applicants *service.ApplicantService
	documents  *service.DocumentService
	metrics    *service.MetricsService
}

// NewApplicantHandler creates a new handler.
func NewApplicantHandler(applicants *service.ApplicantService, documents *service.DocumentService, metrics *service.MetricsService) *ApplicantHandler {
	return &ApplicantHandler{applicants: applicants, documents: documents, metrics: metrics}
}

// Profile godoc
// @Summary Applicant profile
// @Description Account, personal info, uploaded files, and assigned assessors
// @Tags Applicants
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /applicant/profile [get]
func (h *ApplicantHandler) Profile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.applicants.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// UpdatePersonalInfo godoc
// @Summary Update personal information
// @Tags Applicants
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePersonalInfoRequest true "Personal info"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applicant/personal-info [put]
func (h *ApplicantHandler) UpdatePersonalInfo(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdatePersonalInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	applicant, err := h.applicants.UpdatePersonalInfo(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Personal information updated", gin.H{
		"personalInfo": applicant.PersonalInfo,
		"status":       applicant.Status,
	})
}

// UploadDocuments godoc
// @Summary Upload application documents
// @Description Multipart upload; the whole batch is rejected when any file is oversized or of a disallowed type
// @Tags Applicants
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Files to upload"
// @Param label formData string false "Document label"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /applicant/documents [post]
func (h *ApplicantHandler) UploadDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}
	label := c.PostForm("label")

	headers := form.File["files"]
	inputs := make([]service.UploadInput, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read uploaded file"))
			return
		}
		inputs = append(inputs, service.UploadInput{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Label:       label,
			Data:        data,
		})
	}

	uploaded, err := h.documents.Upload(c.Request.Context(), claims.UserID, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordDocumentUploads(len(uploaded))

	response.Created(c, "Documents uploaded successfully", gin.H{"files": uploaded})
}

// ListDocuments godoc
// @Summary List own documents grouped by label
// @Tags Applicants
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applicant/documents [get]
func (h *ApplicantHandler) ListDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	grouped, err := h.documents.ListByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grouped, nil)
}

// DownloadDocument godoc
// @Summary Download one of the applicant's own documents
// @Tags Applicants
// @Produce octet-stream
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /applicant/documents/{id} [get]
func (h *ApplicantHandler) DownloadDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	doc, content, err := h.documents.Fetch(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, content)
}

// DeleteDocument godoc
// @Summary Delete one of the applicant's own documents
// @Tags Applicants
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /applicant/documents/{id} [delete]
func (h *ApplicantHandler) DeleteDocument(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.documents.Delete(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Document deleted", nil)
}
