package router

import (
	"net/http"

	"bacheliers/config"
	"bacheliers/internal/auth"
	"bacheliers/internal/handler"
	"bacheliers/internal/middleware"
	"bacheliers/internal/repository"
	"bacheliers/internal/service"
	"bacheliers/internal/ws"
	"bacheliers/pkg/payment"

	"github.com/gin-gonic/gin"
)

// Deps are the external collaborators chosen by main (or by tests).
type Deps struct {
	Store    repository.RegistrationStore
	Events   repository.PaymentEventLog
	Provider payment.Provider
	Mailer   service.Mailer
	Verifier auth.Verifier
}

func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowOrigin))

	statusHub := ws.NewHub()

	// Services
	notifSvc := service.NewNotificationService(deps.Mailer, statusHub, cfg.Mail.TicketURL)
	regSvc := service.NewRegistrationService(deps.Store)
	paymentSvc := service.NewPaymentService(deps.Store, deps.Provider, &cfg.Payment)
	reconciler := service.NewReconciler(deps.Store, deps.Events, notifSvc)

	// Handlers
	registrationHandler := handler.NewRegistrationHandler(regSvc, notifSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(reconciler, &cfg.Payment)

	authMw := middleware.AuthRequired(deps.Verifier)
	rateMw := middleware.RateLimit(middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/registration/start", rateMw, registrationHandler.SendPreliminary)

		me := api.Group("/me")
		me.Use(rateMw, authMw)
		{
			me.GET("/registration", registrationHandler.Get)
			me.PUT("/registration", registrationHandler.Save)
			me.POST("/registration/complete", registrationHandler.Complete)
			me.GET("/registration/status", registrationHandler.Status)
		}
		api.POST("/payment/initiate", rateMw, authMw, paymentHandler.Initiate)

		// gateways are not rate limited
		api.POST("/payment/webhook", paymentWebhookHandler.Handle)
		api.POST("/payment/webhook/:gateway", paymentWebhookHandler.Handle)

		api.GET("/ws/status", ws.UpgradeStatusWS(deps.Verifier, statusHub, registrationHandler.Snapshot))
	}

	return r
}
