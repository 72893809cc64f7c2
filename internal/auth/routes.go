package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes registers auth routes
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)

		protected := authGroup.Group("", Middleware(handler.Service))
		protected.POST("/logout", handler.Logout)
		protected.GET("/me", handler.Me)
	}
}
