package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"listeningroom/backend/internal/auth"
	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/storage"
)

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"max=80"`
}

// Register creates a seeker account and returns a token.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := h.Store.GetUserByEmail(req.Email); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Error().Err(err).Msg("looking up email at registration")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	} else if existing != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email already registered"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("hashing password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		UserType:     models.UserTypeSeeker,
	}
	if err := h.Store.CreateUser(user); err != nil {
		log.Error().Err(err).Msg("creating user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	token, err := h.Auth.GenerateToken(user.ID, user.UserType)
	if err != nil {
		log.Error().Err(err).Msg("signing token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and the ban flag, then issues a token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.GetUserByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		log.Error().Err(err).Msg("loading user at login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	if banned, err := h.Store.IsUserBanned(user.ID); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("checking ban at login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	} else if banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is suspended"})
		return
	}

	token, err := h.Auth.GenerateToken(user.ID, user.UserType)
	if err != nil {
		log.Error().Err(err).Msg("signing token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.Store.GetUserByID(auth.CallerID(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error().Err(err).Msg("loading profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
