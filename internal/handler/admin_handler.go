package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// AdminHandler serves the back-office roster, decision, and account
// management endpoints.
type AdminHandler struct {
	admins      *service.AdminService
	assignments *service.AssignmentService
	dashboard   *service.DashboardService
}

// NewAdminHandler creates a new handler.
func NewAdminHandler(admins *service.AdminService, assignments *service.AssignmentService, dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{admins: admins, assignments: assignments, dashboard: dashboard}
}

// ListApplicants godoc
// @Summary Applicant roster
// @Tags Admin
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search name or applicant number"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/applicants [get]
func (h *AdminHandler) ListApplicants(c *gin.Context) {
	filter := applicantFilterFromQuery(c)
	summaries, pagination, err := h.admins.ListApplicants(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, pagination)
}

// GetApplicant godoc
// @Summary Applicant detail with evaluations
// @Tags Admin
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applicants/{id} [get]
func (h *AdminHandler) GetApplicant(c *gin.Context) {
	detail, err := h.admins.GetApplicant(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// ApproveApplicant godoc
// @Summary Approve an applicant
// @Tags Admin
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applicants/{id}/approve [post]
func (h *AdminHandler) ApproveApplicant(c *gin.Context) {
	if err := h.admins.ApproveApplicant(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Applicant approved", nil)
}

// RejectApplicant godoc
// @Summary Reject an applicant
// @Tags Admin
// @Produce json
// @Param id path string true "Applicant ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applicants/{id}/reject [post]
func (h *AdminHandler) RejectApplicant(c *gin.Context) {
	if err := h.admins.RejectApplicant(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Applicant rejected", nil)
}

// AssignAssessor godoc
// @Summary Assign an assessor to an applicant
// @Description Idempotent; assigning the same pair twice leaves one assignment
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body dto.AssignAssessorRequest true "Assignment"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assignments [post]
func (h *AdminHandler) AssignAssessor(c *gin.Context) {
	var req dto.AssignAssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	assignment, err := h.assignments.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Assessor assigned", assignment)
}

// DashboardStats godoc
// @Summary Dashboard statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// ListAssessors godoc
// @Summary Assessor roster with assignment counts
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/assessors [get]
func (h *AdminHandler) ListAssessors(c *gin.Context) {
	summaries, err := h.admins.ListAssessors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}

// ListApprovedAssessors godoc
// @Summary Approved assessors for the assignment picker
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/assessors/approved [get]
func (h *AdminHandler) ListApprovedAssessors(c *gin.Context) {
	assessors, err := h.admins.ListApprovedAssessors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessors, nil)
}

// GetAssessor godoc
// @Summary Assessor detail with assigned applicants
// @Tags Admin
// @Produce json
// @Param id path string true "Assessor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assessors/{id} [get]
func (h *AdminHandler) GetAssessor(c *gin.Context) {
	summary, err := h.admins.GetAssessor(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// UpdateAssessor godoc
// @Summary Update an assessor account
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Assessor ID"
// @Param payload body dto.UpdateAssessorRequest true "Assessor fields"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assessors/{id} [put]
func (h *AdminHandler) UpdateAssessor(c *gin.Context) {
	var req dto.UpdateAssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessor payload"))
		return
	}

	assessor, err := h.admins.UpdateAssessor(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Assessor updated", assessor)
}

// DeleteAssessor godoc
// @Summary Delete an assessor
// @Description Assignments cascade, pruning the assessor from every applicant's panel
// @Tags Admin
// @Produce json
// @Param id path string true "Assessor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/assessors/{id} [delete]
func (h *AdminHandler) DeleteAssessor(c *gin.Context) {
	if err := h.admins.DeleteAssessor(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Assessor deleted", nil)
}

// ListAdmins godoc
// @Summary List admin accounts
// @Description Super admins only
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/accounts [get]
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	admins, err := h.admins.ListAdmins(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// GetAdmin godoc
// @Summary Get an admin account
// @Description Super admins only
// @Tags Admin
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/accounts/{id} [get]
func (h *AdminHandler) GetAdmin(c *gin.Context) {
	admin, err := h.admins.GetAdmin(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admin, nil)
}

// UpdateAdmin godoc
// @Summary Update an admin account
// @Description Super admins only; demoting the last super admin is refused
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.UpdateAdminRequest true "Admin fields"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/accounts/{id} [put]
func (h *AdminHandler) UpdateAdmin(c *gin.Context) {
	var req dto.UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid admin payload"))
		return
	}

	admin, err := h.admins.UpdateAdmin(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Admin updated", admin)
}

// DeleteAdmin godoc
// @Summary Delete an admin account
// @Description Super admins only; self-deletion and removing the last super admin are refused
// @Tags Admin
// @Produce json
// @Param id path string true "Admin ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/accounts/{id} [delete]
func (h *AdminHandler) DeleteAdmin(c *gin.Context) {
	if err := h.admins.DeleteAdmin(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Admin deleted", nil)
}

// ChangeAdminPassword godoc
// @Summary Change an admin password
// @Description Self-changes verify the current password; super admins may reset others without it
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Admin ID"
// @Param payload body dto.ChangePasswordRequest true "Password payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/accounts/{id}/password [put]
func (h *AdminHandler) ChangeAdminPassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid password payload"))
		return
	}

	if err := h.admins.ChangeAdminPassword(c.Request.Context(), claimsFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, "Password updated", nil)
}

func applicantFilterFromQuery(c *gin.Context) models.ApplicantFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	return models.ApplicantFilter{
		Status:    c.Query("status"),
		Search:    c.Query("search"),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}
