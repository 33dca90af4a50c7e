package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursehub-backend/internal/http/response"
	"github.com/yungbote/coursehub-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// accountRequest is the body of both self-registration and admin account creation.
// Self-registration refuses admin in the service.
type accountRequest struct {
	Name         string `json:"name" binding:"required,notblank"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Role         string `json:"role" binding:"required,oneof=student teacher admin"`
	Program      string `json:"program"`
	Semester     string `json:"semester"`
	TeacherEmail string `json:"teacher_email" binding:"omitempty,email"`
}

func (r accountRequest) input() services.AccountInput {
	return services.AccountInput{
		Name:         r.Name,
		Email:        r.Email,
		Password:     r.Password,
		Role:         roleOf(r.Role),
		Program:      r.Program,
		Semester:     r.Semester,
		TeacherEmail: r.TeacherEmail,
	}
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req accountRequest
	if !bind(c, &req) {
		return
	}
	profile, tokens, err := ah.authService.Register(dbcOf(c), req.input())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"me": profile, "tokens": tokens})
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	tokens, err := ah.authService.Login(dbcOf(c), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, tokens)
}

// POST /api/auth/refresh
// body: { "refresh_token": "..." }
func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bind(c, &req) {
		return
	}
	tokens, err := ah.authService.Refresh(dbcOf(c), req.RefreshToken)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, tokens)
}

// POST /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(dbcOf(c)); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
