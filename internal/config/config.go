package config

import (
	"os"
	"time"
)

// Config carries everything read from the environment. Secrets default to
// empty so missing configuration fails at the point of use, never silently.
type Config struct {
	Env  string
	Port string

	MongoURI      string
	MongoDatabase string

	JWTSecret string
	AccessTTL time.Duration

	RazorpayKeyID         string
	RazorpayKeySecret     string
	RazorpayBaseURL       string
	RazorpayWebhookSecret string

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func Load() Config {
	return Config{
		Env:  getenv("APP_ENV", "development"),
		Port: getenv("PORT", "8080"),

		MongoURI:      getenv("MONGOURI", "mongodb://localhost:27017"),
		MongoDatabase: getenv("MONGO_DATABASE", "studyhubdb"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		AccessTTL: getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),

		RazorpayKeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		RazorpayBaseURL:       getenv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		RazorpayWebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: getenv("SMTP_PORT", "587"),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: getenv("SMTP_FROM", "StudyHub <no-reply@studyhubedu.online>"),
	}
}
