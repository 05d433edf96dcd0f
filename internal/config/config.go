package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	GatewayModeSandbox = "sandbox"
	GatewayModeLive    = "live"

	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database
	Seed        Seed

	Gateway Gateway `envPrefix:"GATEWAY_"`
	Auth    Auth    `envPrefix:"AUTH_"`
	Invoice Invoice `envPrefix:"INVOICE_"`
}

// Gateway holds the payment processor credentials. An empty MerchantID or
// APIKey puts payment sessions into mock mode and disables webhook signature
// checks, which Validate forbids in production.
type Gateway struct {
	MerchantID string        `env:"MERCHANT_ID"`
	APIKey     string        `env:"API_KEY"`
	Mode       string        `env:"MODE" envDefault:"sandbox"`
	SandboxURL string        `env:"SANDBOX_URL" envDefault:"https://api.sandbox.kashier.io"`
	LiveURL    string        `env:"LIVE_URL" envDefault:"https://api.kashier.io"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

func (g Gateway) Configured() bool {
	return g.MerchantID != "" && g.APIKey != ""
}

func (g Gateway) BaseURL() string {
	if g.Mode == GatewayModeLive {
		return g.LiveURL
	}
	return g.SandboxURL
}

type Auth struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"168h"`
}

type Invoice struct {
	Prefix       string  `env:"PREFIX" envDefault:"IG"`
	Digits       int     `env:"DIGITS" envDefault:"4"`
	TaxPercent   float64 `env:"TAX_PERCENT" envDefault:"0"`
	CompanyName  string  `env:"COMPANY_NAME" envDefault:"Igate-host"`
	SupportEmail string  `env:"SUPPORT_EMAIL" envDefault:"support@igate-host.com"`
}

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	URL    string `env:"DATABASE_URL" envDefault:"storefront.db"`
}

type Seed struct {
	Catalog       bool   `env:"SEED_CATALOG" envDefault:"false"`
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

func (e Environment) IsProduction() bool {
	return e.Name == "production"
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

func (c *Config) Validate() error {
	switch c.Gateway.Mode {
	case GatewayModeSandbox, GatewayModeLive:
	default:
		return fmt.Errorf("unknown gateway mode %q", c.Gateway.Mode)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	if c.Invoice.Digits <= 0 {
		return errors.New("INVOICE_DIGITS must be positive")
	}

	if c.Environment.IsProduction() && !c.Gateway.Configured() {
		return errors.New("gateway merchant id and api key are required in production")
	}

	return nil
}
