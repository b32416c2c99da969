package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskpay-backend/internal/config"
	"github.com/ignatzorin/taskpay-backend/internal/http/handlers"
	"github.com/ignatzorin/taskpay-backend/internal/http/middleware"
)

func SetupRouter(
	cfg *config.Config,
	paymentHandler *handlers.PaymentHandler,
	taskHandler *handlers.TaskHandler,
	userHandler *handlers.UserHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.GET("/ws", wsHandler.Handle)

	api := r.Group("/api")

	payment := api.Group("/payment")
	mutatingRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	{
		payment.POST("/select-method", mutatingRateLimit, paymentHandler.SelectMethod)
		payment.POST("/process", mutatingRateLimit, paymentHandler.Process)
		payment.POST("/cancel", mutatingRateLimit, paymentHandler.Cancel)
		payment.GET("/", paymentHandler.List)
		payment.GET("/:id", paymentHandler.Get)
		payment.GET("/users/:id/balance", paymentHandler.GetBalance)
		payment.POST("/users/:id/deposit", mutatingRateLimit, paymentHandler.Deposit)
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.List)
		tasks.GET("/:id", taskHandler.Get)
	}

	users := api.Group("/users")
	{
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
	}

	notifications := api.Group("/notifications")
	{
		notifications.POST("/send-new-message", notificationHandler.SendNewMessage)
		notifications.POST("/send-new-response", notificationHandler.SendNewResponse)
		notifications.POST("/send-response-rejected", notificationHandler.SendResponseRejected)
		notifications.POST("/send-response-accepted", notificationHandler.SendResponseAccepted)
		notifications.POST("/send-task-completed", notificationHandler.SendTaskCompleted)
		notifications.POST("/send-rating-changed", notificationHandler.SendRatingChanged)
	}

	return r
}
