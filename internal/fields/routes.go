package fields

import "github.com/gin-gonic/gin"

// RegisterRoutes registers field routes
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	areas := r.Group("/areas")
	{
		areas.GET("", handler.ListAreas)
		areas.POST("", handler.CreateArea)
		areas.GET("/:id", handler.GetArea)
		areas.PUT("/:id", handler.UpdateArea)
		areas.DELETE("/:id", handler.DeleteArea)
		areas.GET("/:id/products", handler.ListProducts)
		areas.POST("/:id/products", handler.CreateProducts)
	}

	products := r.Group("/products")
	{
		products.PUT("/:id", handler.UpdateProduct)
		products.DELETE("/:id", handler.DeleteProduct)
	}

	r.GET("/stats", handler.GetStats)
}
