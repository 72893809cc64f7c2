package fields

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrAreaNotFound), errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// ListAreas returns all areas, optionally filtered by ?q=
func (h *Handler) ListAreas(c *gin.Context) {
	areas := h.Service.Catalog().Search(c.Query("q"))
	if areas == nil {
		areas = []Area{}
	}
	c.JSON(http.StatusOK, gin.H{"areas": areas})
}

// GetArea returns one area with its products
func (h *Handler) GetArea(c *gin.Context) {
	id := c.Param("id")
	area, ok := h.Service.Catalog().AreaByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrAreaNotFound.Error()})
		return
	}
	products := h.Service.Catalog().ProductsForArea(id)
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, gin.H{"area": area, "products": products})
}

// CreateArea registers a drawn shape
func (h *Handler) CreateArea(c *gin.Context) {
	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area, err := h.Service.CreateArea(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"area": area})
}

// UpdateArea edits name, owner or geometry
func (h *Handler) UpdateArea(c *gin.Context) {
	var req UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area, err := h.Service.UpdateArea(c.Param("id"), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"area": area})
}

// DeleteArea removes an area and all its products
func (h *Handler) DeleteArea(c *gin.Context) {
	if err := h.Service.DeleteArea(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "area deleted"})
}

// ListProducts returns the products applied to an area
func (h *Handler) ListProducts(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.Service.Catalog().AreaByID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrAreaNotFound.Error()})
		return
	}
	products := h.Service.Catalog().ProductsForArea(id)
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateProducts logs a batch of applications against an area
func (h *Handler) CreateProducts(c *gin.Context) {
	var req CreateProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := h.Service.CreateProducts(c.Param("id"), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"products": products})
}

// UpdateProduct edits a logged application
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.Service.UpdateProduct(c.Param("id"), req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeleteProduct removes one logged application
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.Service.DeleteProduct(c.Param("id")); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// GetStats returns the dashboard counters
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Catalog().Stats())
}
