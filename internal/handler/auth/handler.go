package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/safefam/api/internal/handler"
	"github.com/safefam/api/internal/middleware"
	"github.com/safefam/api/internal/model"
	"github.com/safefam/api/internal/service/auth"
	apperrors "github.com/safefam/api/pkg/errors"
	"github.com/safefam/api/pkg/httputil"
)

type Handler struct {
	svc *auth.Service
}

func NewHandler(svc *auth.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the public account routes on public and the
// session routes on authed, which must already require a bearer token.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	a := public.Group("/auth")
	{
		a.POST("/register", h.Register)
		a.POST("/login", h.Login)
		a.POST("/refresh", h.RefreshToken)
		a.POST("/forgot-password", h.ForgotPassword)
		a.POST("/reset-password", h.ResetPassword)
		a.POST("/verify-email", h.VerifyEmail)
		a.POST("/resend-verification", h.ResendVerification)
	}

	session := authed.Group("/auth")
	{
		session.POST("/logout", h.Logout)
		session.GET("/me", h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithCreated(c, user)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	tokens, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

func (h *Handler) Logout(c *gin.Context) {
	var req model.RefreshTokenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "logged out successfully"})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	_ = h.svc.ForgotPassword(c.Request.Context(), req.Email)
	httputil.RespondWithSuccess(c, gin.H{"message": "if the email exists, a reset link will be sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "password reset successfully"})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	var req model.VerifyEmailRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"message": "email verified successfully"})
}

func (h *Handler) ResendVerification(c *gin.Context) {
	var req model.ResendVerificationRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	if err := h.svc.ResendVerification(c.Request.Context(), req.Email); err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.Response{
		Status: "success",
		Data:   gin.H{"message": "if the account exists, a verification email will be sent"},
	})
}

func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthorized(nil))
		return
	}

	me, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	httputil.RespondWithSuccess(c, me)
}
