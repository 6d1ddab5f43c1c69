package handlers

import (
	"net/http"
	"strconv"
	"time"

	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
)

type CreateProductRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Image       string   `json:"image"`
}

type ownerResponse struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

type productResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Image       string        `json:"image"`
	Owner       ownerResponse `json:"owner"`
	CreatedAt   time.Time     `json:"created_at"`
}

func newProductResponse(p models.Product) productResponse {
	owner := ownerResponse{ID: p.OwnerID}
	if p.Owner != nil {
		owner.Username = p.Owner.Username
	}
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Image:       p.Image,
		Owner:       owner,
		CreatedAt:   p.CreatedAt,
	}
}

func newProductListResponse(products []models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

// ListProducts handles GET /products?search=&category=
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.listingService.ListPublic(c.Request.Context(), services.ListingFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	})
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, err, "Failed to fetch products.")
		return
	}

	c.JSON(http.StatusOK, newProductListResponse(products))
}

func (h *Handler) MyListings(c *gin.Context) {
	products, err := h.listingService.ListByOwner(c.Request.Context(), middleware.AccountID(c))
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, err, "Failed to fetch user listings.")
		return
	}

	c.JSON(http.StatusOK, newProductListResponse(products))
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to create product listing."})
		return
	}

	product, err := h.listingService.Create(c.Request.Context(), services.CreateListingDTO{
		OwnerID:     middleware.AccountID(c),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Image:       req.Image,
		Meta:        requestMeta(c),
	})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// Store rejections on create surface as a bad listing.
			status = http.StatusBadRequest
		}
		h.respondError(c, status, err, "Failed to create product listing.")
		return
	}

	c.JSON(http.StatusCreated, newProductResponse(*product))
}

func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.listingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, statusFor(err), err, "Failed to fetch product.")
		return
	}

	c.JSON(http.StatusOK, newProductResponse(*product))
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	err := h.listingService.Delete(c.Request.Context(), c.Param("id"), middleware.AccountID(c), requestMeta(c))
	if err != nil {
		h.respondError(c, statusFor(err), err, "Failed to delete product.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully."})
}

// ProductQRCode renders a QR code linking to the listing's public page.
func (h *Handler) ProductQRCode(c *gin.Context) {
	product, err := h.listingService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, statusFor(err), err, "Failed to fetch product.")
		return
	}

	size, _ := strconv.Atoi(c.Query("size"))
	opts := services.QROptions{
		Size:    size,
		FgColor: c.Query("fg"),
		BgColor: c.Query("bg"),
	}

	if c.Query("format") == "svg" {
		svg, err := h.qrService.ListingSVG(product.ID, opts)
		if err != nil {
			h.respondError(c, http.StatusInternalServerError, err, "Failed to generate QR code.")
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
		return
	}

	png, err := h.qrService.ListingPNG(product.ID, opts)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, err, "Failed to generate QR code.")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
