package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Receipt intake
	UploadsDir        string
	MaxUploadBytes    int64
	OCRServiceURL     string
	OCRTimeout        time.Duration

	// Layout dispatch
	TreasuryEmail        string
	GmailSenderAddress   string
	GmailCredentialsJSON string
	GmailTokenJSON       string
	LayoutRetrySchedule  string

	RateLimit     string
	PosthogAPIKey string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "8h")
	viper.SetDefault("JWT_ISSUER", "netcash-backend")
	viper.SetDefault("UPLOADS_DIR", "/var/lib/netcash/uploads")
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("OCR_SERVICE_URL", "")
	viper.SetDefault("OCR_TIMEOUT", "45s")
	viper.SetDefault("TREASURY_EMAIL", "")
	viper.SetDefault("GMAIL_SENDER_ADDRESS", "")
	viper.SetDefault("GMAIL_CREDENTIALS_JSON", "")
	viper.SetDefault("GMAIL_TOKEN_JSON", "")
	viper.SetDefault("LAYOUT_RETRY_SCHEDULE", "@every 2m")
	viper.SetDefault("RATE_LIMIT", "120-M")
	viper.SetDefault("POSTHOG_API_KEY", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 8 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.UploadsDir = viper.GetString("UPLOADS_DIR")
	cfg.MaxUploadBytes = viper.GetInt64("MAX_UPLOAD_BYTES")

	cfg.OCRServiceURL = viper.GetString("OCR_SERVICE_URL")
	if cfg.OCRServiceURL == "" {
		log.Println("Warning: OCR_SERVICE_URL not set. Receipt extraction will fail.")
	}
	ocrTimeoutStr := viper.GetString("OCR_TIMEOUT")
	ocrTimeout, err := time.ParseDuration(ocrTimeoutStr)
	if err != nil {
		ocrTimeout = 45 * time.Second
		log.Printf("Warning: Invalid value for OCR_TIMEOUT ('%s'). Defaulting to %s.\n", ocrTimeoutStr, ocrTimeout)
	}
	cfg.OCRTimeout = ocrTimeout

	cfg.TreasuryEmail = viper.GetString("TREASURY_EMAIL")
	cfg.GmailSenderAddress = viper.GetString("GMAIL_SENDER_ADDRESS")
	cfg.GmailCredentialsJSON = viper.GetString("GMAIL_CREDENTIALS_JSON")
	cfg.GmailTokenJSON = viper.GetString("GMAIL_TOKEN_JSON")
	if cfg.TreasuryEmail == "" {
		log.Println("Warning: TREASURY_EMAIL not set. Layout dispatch will stay pending.")
	}
	cfg.LayoutRetrySchedule = viper.GetString("LAYOUT_RETRY_SCHEDULE")

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")

	return cfg, nil
}
