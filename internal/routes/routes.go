package routes

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/greencart/greencart-golang/internal/handlers"
	"github.com/greencart/greencart-golang/internal/middleware"
)

// SetupRouter wires every endpoint. Route groups mirror the client's API
// modules: user, seller, product, category, cart, address, order, payment.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	// CORS must run before everything else. Credentials are allowed because
	// auth rides in httpOnly cookies.
	allowedOrigins := []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
		allowedOrigins = append(allowedOrigins, frontend)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authUser := middleware.AuthUser(h.Keys)
	authSeller := middleware.AuthSeller(h.Keys, h.SellerEmail)

	api := router.Group("/api")
	{
		// --- Health ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- User Routes ---
		user := api.Group("/user")
		{
			user.POST("/register", h.RegisterUser)
			user.POST("/login", h.Login)
			user.POST("/refresh-token", h.RefreshToken)
			user.POST("/logout", h.Logout)
			user.GET("/is-auth", authUser, h.CheckAuth)
		}

		// --- Seller Routes ---
		seller := api.Group("/seller")
		{
			seller.POST("/login", h.SellerLogin)
			seller.GET("/is-auth", authSeller, h.SellerCheckAuth)
			seller.POST("/logout", h.SellerLogout)
		}

		// --- Product Routes ---
		product := api.Group("/product")
		{
			product.GET("/list", h.ListProducts)
			product.GET("/:id", h.GetProduct)
			product.POST("/add", authSeller, h.CreateProduct)
			product.POST("/stock", authSeller, h.ChangeStock)
		}

		// --- Category Routes ---
		category := api.Group("/category")
		{
			category.GET("/list", h.ListCategories)
			category.GET("/:id", h.GetCategory)
			category.POST("/create", authSeller, h.CreateCategory)
			category.PUT("/update/:id", authSeller, h.UpdateCategory)
			category.DELETE("/delete/:id", authSeller, h.DeleteCategory)
			category.PATCH("/toggle/:id", authSeller, h.ToggleCategory)
		}

		// --- Cart Routes ---
		cart := api.Group("/cart", authUser)
		{
			cart.GET("", h.GetCart)
			cart.POST("/update", h.UpdateCart)
		}

		// --- Address Routes ---
		address := api.Group("/address", authUser)
		{
			address.POST("/add", h.AddAddress)
			address.GET("/list", h.ListAddresses)
		}

		// --- Order Routes ---
		order := api.Group("/order")
		{
			order.POST("/cod", authUser, h.PlaceOrderCOD)
			order.GET("/user", authUser, h.GetUserOrders)
			order.POST("/cancel", authUser, h.CancelOrder)

			// Seller routes come before /:id so they are not captured by it.
			order.GET("/seller", authSeller, h.GetSellerOrders)
			order.POST("/update-status", authSeller, h.UpdateOrderStatus)

			order.GET("/:id", authUser, h.GetOrderByID)
		}

		// --- Payment Routes ---
		pay := api.Group("/payment", authUser)
		{
			pay.POST("/create-order", h.CreateRazorpayOrder)
			pay.POST("/verify", h.VerifyPayment)
			pay.POST("/failure", h.PaymentFailure)
		}
	}

	return router
}
