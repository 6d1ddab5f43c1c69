package handlers

import (
	"log/slog"

	"marketplace/internal/config"
	"marketplace/internal/services"

	"gorm.io/gorm"
)

type Handler struct {
	cfg             config.Config
	logger          *slog.Logger
	db              *gorm.DB
	tokenService    *services.TokenService
	identityService *services.IdentityService
	listingService  *services.ListingService
	qrService       *services.QRService
}

func NewHandler(
	cfg config.Config,
	logger *slog.Logger,
	db *gorm.DB,
	tokenService *services.TokenService,
	identityService *services.IdentityService,
	listingService *services.ListingService,
	qrService *services.QRService,
) *Handler {
	return &Handler{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		tokenService:    tokenService,
		identityService: identityService,
		listingService:  listingService,
		qrService:       qrService,
	}
}
