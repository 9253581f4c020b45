package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Store     StoreConfig     `envPrefix:"STORE_"`
	Firebase  FirebaseConfig  `envPrefix:"FIREBASE_"`
	JWT       JWTConfig       `envPrefix:"JWT_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Payment   PaymentConfig   `envPrefix:"PAYMENT_"`
	CinetPay  CinetPayConfig  `envPrefix:"CINETPAY_"`
	Midtrans  MidtransConfig  `envPrefix:"MIDTRANS_"`
	CORS      CORSConfig      `envPrefix:"CORS_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
}

type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8099"`
	Env          string        `env:"ENV" envDefault:"development"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
}

type DatabaseConfig struct {
	DSN             string        `env:"DSN"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"10"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"100"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"1h"`
}

// StoreConfig selects where registrations live: "firestore", "mysql" or "memory".
type StoreConfig struct {
	Backend string `env:"BACKEND" envDefault:"firestore"`
}

type FirebaseConfig struct {
	ProjectID              string `env:"PROJECT_ID"`
	ServiceAccountPath     string `env:"SERVICE_ACCOUNT_PATH"`
	RegistrationCollection string `env:"REGISTRATION_COLLECTION" envDefault:"inscriptions"`
	EventCollection        string `env:"EVENT_COLLECTION" envDefault:"payment_events"`
}

type JWTConfig struct {
	AccessSecret string        `env:"ACCESS_SECRET" envDefault:"change-me-in-production"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"24h"`
	Issuer       string        `env:"ISSUER" envDefault:"bal-des-bacheliers"`
}

// AuthConfig picks the identity provider: "firebase" verifies Firebase ID tokens,
// "jwt" verifies locally signed HS256 tokens.
type AuthConfig struct {
	Provider string `env:"PROVIDER" envDefault:"firebase"`
}

type MailConfig struct {
	Host     string        `env:"HOST" envDefault:"smtp.gmail.com"`
	Port     int           `env:"PORT" envDefault:"465"`
	Secure   bool          `env:"SECURE" envDefault:"true"`
	User     string        `env:"USER"`
	Pass     string        `env:"PASS"`
	FromName string        `env:"FROM_NAME" envDefault:"Bal des Bacheliers"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
	// TicketURL is linked from the confirmation e-mail.
	TicketURL string `env:"TICKET_URL" envDefault:"https://drive.google.com/file/d/1ulbXhIuLIOqfHHLNRnBVPTN6XKwpxBFt/view?usp=drive_link"`
}

type PaymentConfig struct {
	Provider       string `env:"PROVIDER" envDefault:"stub"`
	WebhookGateway string `env:"WEBHOOK_GATEWAY" envDefault:"generic"`
	WebhookSecret  string `env:"WEBHOOK_SECRET"`
	Currency       string `env:"CURRENCY" envDefault:"XAF"`
	// PublicBaseURL is where the gateway reaches us, e.g. https://api.example.com
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8099"`
	// ReturnURL may contain {STATUS} and {ID} placeholders.
	ReturnURL string `env:"RETURN_URL" envDefault:"http://localhost:5173/payment-status?status={STATUS}&id={ID}"`
}

// WebhookURL returns the notify URL registered with the given gateway.
func (p PaymentConfig) WebhookURL(gateway string) string {
	return strings.TrimRight(p.PublicBaseURL, "/") + "/api/v1/payment/webhook/" + gateway
}

type CinetPayConfig struct {
	APIURL string `env:"API_URL" envDefault:"https://api-checkout.cinetpay.com/v2/payment"`
	APIKey string `env:"API_KEY"`
	SiteID string `env:"SITE_ID"`
}

type MidtransConfig struct {
	ServerKey  string `env:"SERVER_KEY"`
	Production bool   `env:"PRODUCTION" envDefault:"false"`
}

type CORSConfig struct {
	AllowOrigin string `env:"ALLOW_ORIGIN" envDefault:"*"`
}

type RateLimitConfig struct {
	Requests int           `env:"REQUESTS" envDefault:"100"`
	Window   time.Duration `env:"WINDOW" envDefault:"60s"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] no .env file, using process environment")
	}
	return FromEnv()
}

// FromEnv parses the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	cfg.Auth.Provider = strings.ToLower(strings.TrimSpace(cfg.Auth.Provider))
	cfg.Payment.Provider = strings.ToLower(strings.TrimSpace(cfg.Payment.Provider))
	cfg.Payment.WebhookGateway = strings.ToLower(strings.TrimSpace(cfg.Payment.WebhookGateway))
	if cfg.Store.Backend == "mysql" && cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DB_DSN is empty")
	}
	return &cfg, nil
}
