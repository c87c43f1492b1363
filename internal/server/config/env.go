package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from environment variables. A local .env
// file is loaded first when present; real environment variables win over it.
// Secrets (JWT_SECRET, SMTP_PASSWORD, DB credentials) belong here rather than
// in flags, which leak through process listings.
func parseEnv(config *Config) {

	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString(&config.BindAddr, "BIND_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_DSN")
	setString(&config.SecretKey, "JWT_SECRET")
	setString(&config.SMTPHost, "SMTP_HOST")
	setString(&config.SMTPUser, "SMTP_USER")
	setString(&config.SMTPPassword, "SMTP_PASSWORD")
	setString(&config.SMTPFrom, "SMTP_FROM")
	setString(&config.ContactAddr, "CONTACT_ADDR")
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			config.SMTPPort = port
		}
	}

	if v, ok := os.LookupEnv("TOKEN_VALIDITY"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
}
