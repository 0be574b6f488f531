package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ferixo/storefront/internal/handlers"
	"github.com/ferixo/storefront/internal/service/token"
)

type Deps struct {
	DB              *gorm.DB
	AuthHandler     *handlers.AuthHandler
	ProductHandler  *handlers.ProductHandler
	CouponHandler   *handlers.CouponHandler
	CheckoutHandler *handlers.CheckoutHandler
	OrderHandler    *handlers.OrderHandler
	ReviewHandler   *handlers.ReviewHandler
	SearchHandler   *handlers.SearchHandler
	TokenService    *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/auth/register", d.AuthHandler.Register)
	v1.POST("/auth/login", d.AuthHandler.Login)
	v1.POST("/auth/logout", d.AuthHandler.LogOut)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("/:id/reviews", d.ReviewHandler.ListReviews)
	products.POST("/:id/reviews", d.ReviewHandler.CreateReview, d.TokenService.AutoRefreshMiddleware)

	v1.GET("/search", d.SearchHandler.Search)

	v1.POST("/coupons/verify", d.CouponHandler.Verify)

	v1.POST("/checkout/create-order", d.CheckoutHandler.CreateOrder)
	v1.POST("/checkout/verify-payment", d.CheckoutHandler.VerifyPayment)

	admin := v1.Group("/admin", d.TokenService.AutoRefreshMiddlewareAdmin)

	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PUT("/products/:id", d.ProductHandler.UpdateProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)

	admin.GET("/coupons", d.CouponHandler.ListCoupons)
	admin.POST("/coupons", d.CouponHandler.CreateCoupon)
	admin.DELETE("/coupons/:id", d.CouponHandler.DeleteCoupon)

	admin.GET("/orders", d.OrderHandler.ListRecent)
}
