package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatty-im/chatty/internal/api/middleware"
	"github.com/chatty-im/chatty/internal/crypto"
	"github.com/chatty-im/chatty/internal/logger"
	"github.com/chatty-im/chatty/internal/store"
	"github.com/chatty-im/chatty/internal/wire"
)

// sessionCookieMaxAge matches the token expiry.
const sessionCookieMaxAge = 7 * 24 * 60 * 60

type AuthHandler struct {
	queries    *store.Queries
	jwtManager *crypto.JWTManager
}

func NewAuthHandler(db *sql.DB, jwtManager *crypto.JWTManager) *AuthHandler {
	return &AuthHandler{
		queries:    store.New(db),
		jwtManager: jwtManager,
	}
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, sessionCookieMaxAge, "/", "", false, true)
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req wire.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "All fields are required"})
		return
	}
	if len(req.Password) < 6 {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Password must be at least 6 characters"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.queries.GetUserByEmail(ctx, req.Email); err == nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Email already exists"})
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	user := store.CreateUserParams{
		ID:           uuid.NewString(),
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.queries.CreateUser(ctx, user); err != nil {
		logger.Errorf("Failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	token, err := h.jwtManager.CreateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusCreated, wire.User{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UnixMilli(),
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req wire.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "All fields are required"})
		return
	}

	user, err := h.queries.GetUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and bad password.
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Invalid credentials"})
		return
	}

	token, err := h.jwtManager.CreateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Check handles GET /auth/check
func (h *AuthHandler) Check(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	user, err := h.queries.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, wire.ErrorResponse{Message: "Unauthorized - user not found"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile handles PUT /auth/update-profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req wire.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, wire.ErrorResponse{Message: "Profile pic is required"})
		return
	}

	ctx := c.Request.Context()
	if err := h.queries.UpdateUserProfile(ctx, store.UpdateUserProfileParams{
		ProfilePic: req.ProfilePic,
		ID:         userID,
	}); err != nil {
		logger.Errorf("Failed to update profile: %v", err)
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	user, err := h.queries.GetUserByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, wire.ErrorResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user store.User) wire.User {
	return wire.User{
		ID:         user.ID,
		FullName:   user.FullName,
		Email:      user.Email,
		ProfilePic: user.ProfilePic,
		CreatedAt:  user.CreatedAt.UnixMilli(),
	}
}
