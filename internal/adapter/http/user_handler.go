package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/codigix/Furnituredemo/configs"
	"github.com/codigix/Furnituredemo/internal/adapter/http/middleware"
	"github.com/codigix/Furnituredemo/internal/domain"
	"github.com/codigix/Furnituredemo/internal/usecase"
)

// UserService is implemented by *usecase.Users.
type UserService interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetProfile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, in usecase.UpdateProfileInput) (*domain.User, error)
}

type UserHandler struct {
	svc UserService
	cfg configs.Config
}

func NewUserHandler(svc UserService, cfg configs.Config) *UserHandler {
	return &UserHandler{svc: svc, cfg: cfg}
}

type registerReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "name, email and password (min 6 chars) are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.Register(ctx, usecase.RegisterInput{Name: req.Name, Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userView(u)})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "email and password are required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.issueToken(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "message": "token issuance failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         userView(u),
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.Security.TokenTTL.Seconds()),
	})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.svc.GetProfile(ctx, caller.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(u)})
}

type updateProfileReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_failed", "message": "malformed profile payload"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.svc.UpdateProfile(ctx, caller.UserID, usecase.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userView(u)})
}

func (h *UserHandler) issueToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": h.cfg.Security.Issuer,
		"aud": h.cfg.Security.Audience,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(h.cfg.Security.TokenTTL).Unix(),
		"sub": u.ID,
		"adm": u.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.Security.JWTSecret))
}

func userView(u *domain.User) gin.H {
	return gin.H{
		"id":      u.ID,
		"name":    u.Name,
		"email":   u.Email,
		"isAdmin": u.IsAdmin,
	}
}
