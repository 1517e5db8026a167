package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eteeap/admissions-api/internal/dto"
	"github.com/eteeap/admissions-api/internal/models"
	"github.com/eteeap/admissions-api/internal/service"
	appErrors "github.com/eteeap/admissions-api/pkg/errors"
	"github.com/eteeap/admissions-api/pkg/response"
)

// CookieConfig carries what the handler needs to mint session cookies.
type CookieConfig struct {
	Secure          bool
	ApplicantExpiry time.Duration
	AssessorExpiry  time.Duration
	AdminExpiry     time.Duration
}

// AuthHandler wires the per-role registration, login, logout, and auth-status
// endpoints. Tokens never appear in response bodies; they travel in httpOnly
// cookies only.
type AuthHandler struct {
	service *service.AuthService
	cookies CookieConfig
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies}
}

// RegisterApplicant godoc
// @Summary Register applicant account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterApplicantRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/applicant/register [post]
func (h *AuthHandler) RegisterApplicant(c *gin.Context) {
	var req dto.RegisterApplicantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	applicant, err := h.service.RegisterApplicant(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", gin.H{
		"applicantId": applicant.ApplicantNo,
		"email":       applicant.Email,
	})
}

// LoginApplicant godoc
// @Summary Authenticate applicant
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/applicant/login [post]
func (h *AuthHandler) LoginApplicant(c *gin.Context) {
	h.login(c, models.RoleApplicant, h.cookies.ApplicantExpiry, h.service.LoginApplicant)
}

// LogoutApplicant godoc
// @Summary End applicant session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/applicant/logout [post]
func (h *AuthHandler) LogoutApplicant(c *gin.Context) {
	h.clearCookie(c, models.RoleApplicant)
	response.Message(c, "Logged out successfully", nil)
}

// ApplicantAuthStatus godoc
// @Summary Applicant session status
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/applicant/status [get]
func (h *AuthHandler) ApplicantAuthStatus(c *gin.Context) {
	h.authStatus(c, models.RoleApplicant)
}

// RegisterAssessor godoc
// @Summary Register assessor account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterAssessorRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/assessor/register [post]
func (h *AuthHandler) RegisterAssessor(c *gin.Context) {
	var req dto.RegisterAssessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	assessor, err := h.service.RegisterAssessor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", gin.H{
		"assessorId": assessor.AssessorNo,
		"email":      assessor.Email,
		"fullName":   assessor.FullName,
	})
}

// LoginAssessor godoc
// @Summary Authenticate assessor
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/assessor/login [post]
func (h *AuthHandler) LoginAssessor(c *gin.Context) {
	h.login(c, models.RoleAssessor, h.cookies.AssessorExpiry, h.service.LoginAssessor)
}

// LogoutAssessor godoc
// @Summary End assessor session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/assessor/logout [post]
func (h *AuthHandler) LogoutAssessor(c *gin.Context) {
	h.clearCookie(c, models.RoleAssessor)
	response.Message(c, "Logged out successfully", nil)
}

// AssessorAuthStatus godoc
// @Summary Assessor session status
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/assessor/status [get]
func (h *AuthHandler) AssessorAuthStatus(c *gin.Context) {
	h.authStatus(c, models.RoleAssessor)
}

// RegisterAdmin godoc
// @Summary Register admin account
// @Description The first admin registers without a session and becomes super admin; later registrations require a super admin cookie.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterAdminRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/admin/register [post]
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req dto.RegisterAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	// The route is public for bootstrap; an admin cookie, when present,
	// identifies the acting super admin.
	var actor *models.SessionClaims
	if token, err := c.Cookie(models.RoleAdmin.CookieName()); err == nil && token != "" {
		if claims, err := h.service.ValidateToken(token); err == nil && claims.Role == models.RoleAdmin {
			actor = claims
		}
	}

	admin, err := h.service.RegisterAdmin(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Registration successful", gin.H{
		"email":        admin.Email,
		"fullName":     admin.FullName,
		"isSuperAdmin": admin.IsSuperAdmin,
	})
}

// LoginAdmin godoc
// @Summary Authenticate admin
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/admin/login [post]
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	h.login(c, models.RoleAdmin, h.cookies.AdminExpiry, h.service.LoginAdmin)
}

// LogoutAdmin godoc
// @Summary End admin session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/admin/logout [post]
func (h *AuthHandler) LogoutAdmin(c *gin.Context) {
	h.clearCookie(c, models.RoleAdmin)
	response.Message(c, "Logged out successfully", nil)
}

// AdminAuthStatus godoc
// @Summary Admin session status
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/admin/status [get]
func (h *AuthHandler) AdminAuthStatus(c *gin.Context) {
	h.authStatus(c, models.RoleAdmin)
}

type loginFunc func(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error)

func (h *AuthHandler) login(c *gin.Context, role models.Role, expiry time.Duration, fn loginFunc) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	res, err := fn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setCookie(c, role, res.Token, expiry)
	response.Message(c, "Login successful", res.Profile)
}

func (h *AuthHandler) authStatus(c *gin.Context, role models.Role) {
	token, _ := c.Cookie(role.CookieName())
	status := h.service.AuthStatus(c.Request.Context(), role, token)
	response.JSON(c, http.StatusOK, status, nil)
}

func (h *AuthHandler) setCookie(c *gin.Context, role models.Role, token string, expiry time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(role.CookieName(), token, int(expiry.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *AuthHandler) clearCookie(c *gin.Context, role models.Role) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(role.CookieName(), "", -1, "/", "", h.cookies.Secure, true)
}
