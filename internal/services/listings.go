package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"marketplace/internal/models"
	"marketplace/pkg/utils"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	msgCreateFailed  = "Failed to create product listing."
	msgFetchFailed   = "Failed to fetch products."
	msgMyFetchFailed = "Failed to fetch user listings."
	msgNotFound      = "Product not found."
	msgDeleteDenied  = "Product not found or not authorized to delete."
	msgDeleteFailed  = "Failed to delete product."
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CreateListingDTO holds the caller-supplied listing fields. Price is a
// pointer so a missing price can be told apart from zero.
type CreateListingDTO struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	Price       *float64
	Image       string
	Meta        RequestMeta
}

// ListingFilter narrows ListPublic. Zero values mean "no filter".
type ListingFilter struct {
	Search   string
	Category string
}

func (f ListingFilter) normalizedCategory() string {
	c := strings.TrimSpace(f.Category)
	if c == models.CategoryAll {
		return ""
	}
	return c
}

type ListingService struct {
	db           *gorm.DB
	logger       *slog.Logger
	cache        *ListingCache
	auditService *AuditService
	sf           singleflight.Group
	now          func() time.Time
}

// NewListingService creates a ListingService. If cache is nil, caching is disabled.
func NewListingService(db *gorm.DB, logger *slog.Logger, cache *ListingCache, auditService *AuditService) *ListingService {
	return &ListingService{
		db:           db,
		logger:       logger,
		cache:        cache,
		auditService: auditService,
		now:          time.Now,
	}
}

func (s *ListingService) Create(ctx context.Context, dto CreateListingDTO) (*models.Product, error) {
	title := strings.TrimSpace(dto.Title)
	description := strings.TrimSpace(dto.Description)
	category := strings.TrimSpace(dto.Category)

	if dto.OwnerID == "" {
		return nil, authError("Authentication failed. Token missing.")
	}
	if title == "" || description == "" || category == "" || dto.Price == nil {
		return nil, validationError("Title, description, category and price are required.")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return nil, validationError("Title must be at most 200 characters.")
	}
	if !models.IsValidCategory(category) {
		return nil, validationError("Category must be one of: " + strings.Join(models.Categories, ", ") + ".")
	}
	price := *dto.Price
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return nil, validationError("Price must be a non-negative number.")
	}

	image := strings.TrimSpace(dto.Image)
	if image == "" {
		image = models.DefaultProductImage
	}

	product := models.Product{
		ID:          utils.NewID(),
		Title:       title,
		Description: description,
		Category:    category,
		Price:       price,
		Image:       image,
		OwnerID:     dto.OwnerID,
		CreatedAt:   s.now(),
	}

	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, internalError(msgCreateFailed, err)
	}

	s.invalidateCache(ctx)
	s.auditService.LogAction(&dto.OwnerID, ActionCreateListing, product.ID, map[string]interface{}{
		"title": product.Title,
		"price": product.Price,
	}, dto.Meta)

	return &product, nil
}

// ListPublic returns listings matching filter, oldest first. The title
// search is a case-insensitive substring match against the lower-cased
// title kept in title_search.
func (s *ListingService) ListPublic(ctx context.Context, filter ListingFilter) ([]models.Product, error) {
	if s.cache == nil {
		return s.queryPublic(ctx, filter)
	}

	v, err, _ := s.sf.Do(filterKey(filter), func() (interface{}, error) {
		// Shared by every waiting caller, so one caller going away must not
		// fail the others.
		ctx := context.WithoutCancel(ctx)

		gen, err := s.cache.Generation(ctx)
		if err != nil {
			s.logger.Warn("Listing cache read failed", "error", err)
			return s.queryPublic(ctx, filter)
		}

		list, err := s.cache.GetSearch(ctx, gen, filter)
		if err != nil {
			s.logger.Warn("Listing cache read failed", "error", err)
		} else if list != nil {
			return list, nil
		}

		list, err = s.queryPublic(ctx, filter)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetSearch(ctx, gen, filter, list); err != nil {
			s.logger.Warn("Listing cache write failed", "error", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

func (s *ListingService) queryPublic(ctx context.Context, filter ListingFilter) ([]models.Product, error) {
	q := s.withOwner(ctx)

	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		q = q.Where(`title_search LIKE ? ESCAPE '\'`, pattern)
	}
	if category := filter.normalizedCategory(); category != "" {
		q = q.Where("category = ?", category)
	}

	products := []models.Product{}
	if err := q.Order("created_at asc, id asc").Find(&products).Error; err != nil {
		return nil, internalError(msgFetchFailed, err)
	}
	return products, nil
}

func (s *ListingService) ListByOwner(ctx context.Context, ownerID string) ([]models.Product, error) {
	products := []models.Product{}
	err := s.withOwner(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc, id asc").
		Find(&products).Error
	if err != nil {
		return nil, internalError(msgMyFetchFailed, err)
	}
	return products, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.withOwner(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError(msgNotFound)
		}
		return nil, internalError("Failed to fetch product.", err)
	}
	return &product, nil
}

// Delete removes the listing only when requesterID owns it. A missing
// listing and someone else's listing produce the same ErrNotFound.
func (s *ListingService) Delete(ctx context.Context, id, requesterID string, meta RequestMeta) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, requesterID).
		Delete(&models.Product{})
	if result.Error != nil {
		return internalError(msgDeleteFailed, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundError(msgDeleteDenied)
	}

	s.invalidateCache(ctx)
	s.auditService.LogAction(&requesterID, ActionDeleteListing, id, nil, meta)
	return nil
}

func (s *ListingService) withOwner(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Product{}).Preload("Owner")
}

func (s *ListingService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("Listing cache invalidation failed", "error", err)
	}
}
