package handlers

import (
	"errors"
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please fill out all fields."})
		return
	}

	res, err := h.identityService.Register(c.Request.Context(), services.RegisterDTO{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		h.respondError(c, statusFor(err), err, "Registration failed. User may already exist.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": res.Account.Summary(), "token": res.Token})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password."})
		return
	}

	res, err := h.identityService.Login(c.Request.Context(), services.LoginDTO{
		Email:    req.Email,
		Password: req.Password,
		Meta:     requestMeta(c),
	})
	if err != nil {
		status := statusFor(err)
		// Bad credentials are a client error here, not a missing token.
		if errors.Is(err, services.ErrAuth) {
			status = http.StatusBadRequest
		}
		h.respondError(c, status, err, "Login failed. Please try again.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": res.Account.Summary(), "token": res.Token})
}

func (h *Handler) Profile(c *gin.Context) {
	account, err := h.identityService.Profile(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, statusFor(err), err, "Failed to fetch profile.")
		return
	}

	c.JSON(http.StatusOK, account)
}
