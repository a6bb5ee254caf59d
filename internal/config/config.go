package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	Database    Database    `envPrefix:"DB_"`
	MercadoPago MercadoPago `envPrefix:"MP_"`
	Auth        Auth        `envPrefix:"AUTH_"`
}

type Database struct {
	Driver       string `env:"DRIVER" envDefault:"sqlite"` // sqlite, mysql
	URL          string `env:"URL" envDefault:"storefront.db"`
	MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
}

type MercadoPago struct {
	BaseApiURL      string `env:"BASE_API_URL" envDefault:"https://api.mercadopago.com"`
	AccessToken     string `env:"ACCESS_TOKEN"`
	WebhookSecret   string `env:"WEBHOOK_SECRET"`
	NotificationURL string `env:"NOTIFICATION_URL"`
	BackURLSuccess  string `env:"BACK_URL_SUCCESS"`
	BackURLFailure  string `env:"BACK_URL_FAILURE"`
	BackURLPending  string `env:"BACK_URL_PENDING"`
	Currency        string `env:"CURRENCY" envDefault:"ARS"`
	Sandbox         bool   `env:"SANDBOX" envDefault:"false"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
	// zero disables the replay window check on the signature timestamp
	SignatureTolerance time.Duration `env:"SIGNATURE_TOLERANCE" envDefault:"0s"`
	VerifyAllKinds     bool          `env:"VERIFY_ALL_KINDS" envDefault:"true"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
