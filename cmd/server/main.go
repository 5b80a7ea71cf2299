package main

import (
	"storefront-service/config"
	"storefront-service/database"
	"storefront-service/handlers"
	"storefront-service/middleware"
	"storefront-service/orders"
	"storefront-service/rabbitmq"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("Starting Storefront Service", zap.String("port", cfg.Port))

	// Set Gin mode based on environment
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	channelPool, err := rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.ReceiptQueue, cfg.ChannelPoolSize, logger)
	if err != nil {
		logger.Fatal("Failed to create RabbitMQ channel pool", zap.Error(err))
	}
	defer channelPool.Close()

	publisher := rabbitmq.NewPublisher(channelPool, cfg.ReceiptQueue, logger)

	engine := orders.NewEngine(db, logger)
	orderHandler := handlers.NewOrderHandler(engine, db, publisher, cfg.ServerURL, logger)
	itemHandler := handlers.NewItemHandler(db, logger)
	userHandler := handlers.NewUserHandler(db, cfg.JWTSecret, logger)

	router := gin.Default()

	authed := middleware.Authenticated(cfg.JWTSecret)
	admin := middleware.AdminOnly()

	api := router.Group("/api/v1")
	{
		api.POST("/register", userHandler.Register)
		api.POST("/login", userHandler.Login)
		api.GET("/customer-by-userid/:user_id", authed, userHandler.GetCustomerByUserID)
		api.POST("/update-profile", authed, userHandler.UpdateProfile)
		api.DELETE("/deactivate", authed, admin, userHandler.Deactivate)
		api.DELETE("/delete-user/:user_id", authed, admin, userHandler.DeleteUser)

		api.GET("/items", itemHandler.GetAllItems)
		api.GET("/items/:id", itemHandler.GetSingleItem)
		api.POST("/items", authed, admin, itemHandler.CreateItem)
		api.PUT("/items/:id", authed, admin, itemHandler.UpdateItem)
		api.DELETE("/items/:id", authed, admin, itemHandler.DeleteItem)

		api.POST("/create-order", authed, orderHandler.CreateOrder)
		api.GET("/orders/user/:userId", authed, orderHandler.GetUserOrders)
		api.GET("/orders", authed, admin, orderHandler.GetAllOrders)
		api.PUT("/orders/:orderId", authed, admin, orderHandler.UpdateOrderStatus)
		api.DELETE("/orders/:orderId", authed, admin, orderHandler.DeleteOrder)
		api.GET("/orders/:orderId/receipt-html", authed, orderHandler.GetOrderReceiptHTML)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	logger.Fatal("Server stopped", zap.Error(router.Run(":"+cfg.Port)))
}

func newLogger(level string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return logger
}
