package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_backend/internal/db"
	authmw "github.com/Skotchmaster/shop_backend/internal/middleware/auth"
	uploadmw "github.com/Skotchmaster/shop_backend/internal/middleware/upload"
)

type Deps struct {
	Accounts *AccountHTTP
	Products *ProductHTTP
	Session  *authmw.Session
	DB       *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error {
		return message(c, http.StatusOK, "Server is running successfully!")
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	user := e.Group("/user")
	user.POST("/signup", d.Accounts.Signup)
	user.POST("/login", d.Accounts.Login)
	user.POST("/logout", d.Accounts.Logout)
	user.GET("/validate", d.Accounts.Validate, d.Session.Require)

	products := e.Group("/product", d.Session.Require)
	products.POST("/create", d.Products.CreateProduct, uploadmw.SingleImage)
	products.PUT("/update/:id", d.Products.UpdateProduct, uploadmw.SingleImage)
	products.GET("", d.Products.ListProducts)
	products.GET("/search", d.Products.SearchProducts)
	products.GET("/:id", d.Products.GetProduct)
	products.DELETE("/:id", d.Products.DeleteProduct)
}
