package routes

import (
	"net/http"
	"time"

	"mindease/handlers"
	"mindease/middleware"
	"mindease/models"
	"mindease/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterSessionRoutes registers login, role switch and logout.
func RegisterSessionRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/session")
	{
		api.POST("", hb.SessionHandler.Create)

		protected := api.Group("")
		protected.Use(middleware.SessionMiddleware(hb.Sessions))
		protected.PUT("/role", hb.SessionHandler.SwitchRole)
		protected.DELETE("", hb.SessionHandler.Delete)
	}
}

// RegisterAppointmentRoutes registers the appointment list and its actions.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.SessionMiddleware(hb.Sessions))
		api.GET("", hb.AppointmentHandler.List)
		api.PATCH("/:id/cancel", hb.AppointmentHandler.Cancel)
		api.PATCH("/:id/feedback", middleware.RequireRole(models.RoleUser), hb.AppointmentHandler.Feedback)
		api.PATCH("/:id/complete", middleware.RequireRole(models.RoleTherapist), hb.AppointmentHandler.Complete)
		api.POST("/:id/join", hb.AppointmentHandler.Join)
	}
}

// RegisterTherapistRoutes registers the therapist directory.
func RegisterTherapistRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/therapists")
	{
		api.Use(middleware.SessionMiddleware(hb.Sessions))
		api.GET("", hb.TherapistHandler.List)
		api.GET("/:id", hb.TherapistHandler.Get)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking/flows")
	{
		bookingGroup.Use(middleware.SessionMiddleware(hb.Sessions), middleware.RequireRole(models.RoleUser))
		bookingGroup.POST("", hb.BookingHandler.Start)
		bookingGroup.GET("/:flowID", hb.BookingHandler.Get)
		bookingGroup.PUT("/:flowID/date", hb.BookingHandler.SelectDate)
		bookingGroup.PUT("/:flowID/time", hb.BookingHandler.SelectTime)
		bookingGroup.PUT("/:flowID/mode", hb.BookingHandler.SelectMode)
		bookingGroup.PUT("/:flowID/type", hb.BookingHandler.SelectType)
		bookingGroup.GET("/:flowID/summary", hb.BookingHandler.Summary)
		bookingGroup.POST("/:flowID/checkout", hb.BookingHandler.Checkout)
	}
}

// RegisterWalletRoutes registers the therapist wallet.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallet")
	{
		api.Use(middleware.SessionMiddleware(hb.Sessions), middleware.RequireRole(models.RoleTherapist))
		api.GET("", hb.WalletHandler.View)
		api.POST("/withdrawals", hb.WalletHandler.Withdraw)
	}
}

// RegisterProfileRoutes registers the profile editor and account actions.
func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profile")
	{
		api.Use(middleware.SessionMiddleware(hb.Sessions))
		api.GET("", hb.ProfileHandler.Get)
		api.POST("/fields/:field/edit", hb.ProfileHandler.Edit)
		api.PUT("/fields/:field", hb.ProfileHandler.SetDraft)
		api.POST("/fields/:field/save", hb.ProfileHandler.Save)
		api.POST("/fields/:field/cancel", hb.ProfileHandler.Cancel)
		api.PATCH("/image", hb.ProfileHandler.UploadImage)
		api.POST("/password/verify", hb.ProfileHandler.VerifyPassword)
		api.POST("/password", hb.ProfileHandler.ChangePassword)
		api.POST("/email/verify", hb.ProfileHandler.VerifyEmail)
	}
}

// RegisterNotificationRoutes registers the notification feed.
func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications")
	{
		api.Use(middleware.SessionMiddleware(hb.Sessions))
		api.GET("", hb.NotificationHandler.Feed)
		api.POST("/read-all", hb.NotificationHandler.MarkAllRead)
		api.POST("/:id/read", hb.NotificationHandler.MarkRead)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.SessionMiddleware(hb.Sessions), middleware.RequireRole(models.RoleAdmin))
		adminGroup.GET("/reconciliation", hb.AdminHandler.ListIncidents)
		adminGroup.POST("/reconciliation/:id/resolve", hb.AdminHandler.ResolveIncident)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm MindEase", "dependencies": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", utils.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterSessionRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterTherapistRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
