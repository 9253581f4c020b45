package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bacheliers/config"
	"bacheliers/internal/auth"
	"bacheliers/internal/database"
	"bacheliers/internal/repository"
	"bacheliers/internal/router"
	"bacheliers/internal/service"
	"bacheliers/pkg/payment"

	firebase "firebase.google.com/go/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	ctx := context.Background()

	var app *firebase.App
	if cfg.Store.Backend == "firestore" || cfg.Auth.Provider == "firebase" {
		app, err = database.NewFirebaseApp(ctx, &cfg.Firebase)
		if err != nil {
			log.Fatalf("firebase: %v", err)
		}
	}

	deps := router.Deps{Mailer: service.NewSMTPMailer(&cfg.Mail)}
	var closers []func() error

	switch cfg.Store.Backend {
	case "firestore":
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("firestore: %v", err)
		}
		closers = append(closers, client.Close)
		deps.Store = repository.NewFirestoreRegistrationStore(client, cfg.Firebase.RegistrationCollection)
		deps.Events = repository.NewFirestoreEventLog(client, cfg.Firebase.EventCollection)
	case "mysql":
		db, err := database.NewDB(&cfg.Database)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		deps.Store = repository.NewRegistrationRepository(db)
		deps.Events = repository.NewPaymentEventRepository(db)
	case "memory":
		log.Printf("[STORE] in-memory store: registrations are lost on restart")
		deps.Store = repository.NewMemoryRegistrationStore()
		deps.Events = repository.NewMemoryEventLog()
	default:
		log.Fatalf("unknown STORE_BACKEND %q", cfg.Store.Backend)
	}

	switch cfg.Auth.Provider {
	case "firebase":
		authClient, err := app.Auth(ctx)
		if err != nil {
			log.Fatalf("firebase auth: %v", err)
		}
		deps.Verifier = auth.NewFirebaseVerifier(authClient)
	case "jwt":
		deps.Verifier = auth.NewJWTVerifier(&cfg.JWT)
	default:
		log.Fatalf("unknown AUTH_PROVIDER %q", cfg.Auth.Provider)
	}

	deps.Provider, err = payment.NewProvider(cfg)
	if err != nil {
		log.Fatalf("payment: %v", err)
	}
	log.Printf("[PAYMENT] provider=%s webhook=%s", deps.Provider.Name(), cfg.Payment.WebhookURL(deps.Provider.Name()))
	if cfg.Payment.WebhookSecret == "" {
		log.Printf("[WEBHOOK] WARNING: PAYMENT_WEBHOOK_SECRET is not set; notifications are not authenticated and anyone who can reach the webhook can confirm a registration")
	}
	if cfg.Mail.User == "" {
		log.Printf("[MAIL] MAIL_USER is not set; e-mails will fail and be logged")
	}

	engine := router.Setup(cfg, deps)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Printf("close: %v", err)
		}
	}
	fmt.Println("server stopped")
}
