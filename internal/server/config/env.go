package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables.
//
// Recognized variables:
//
//	ADDRESS           HTTP bind address
//	DATABASE_DSN      PostgreSQL DSN
//	JWT_SECRET        HMAC secret for signing tokens
//	JWT_EXPIRES_IN    token lifetime (time.ParseDuration syntax, e.g. "48h")
//	BCRYPT_COST       bcrypt work factor
//	S3_ROOT_USER / S3_ROOT_PASSWORD / S3_BUCKET / S3_REGION / S3_BASE_ENDPOINT
//	EMAIL_SENDER      From address for notification emails
//
// Unset variables leave the current value untouched; unparsable duration or
// integer values are ignored the same way.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("ADDRESS"); ok {
		config.Address = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("JWT_EXPIRES_IN"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.TokenValidityDuration = d
		}
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.HashCost = n
		}
	}
	if v, ok := os.LookupEnv("S3_ROOT_USER"); ok {
		config.S3RootUser = v
	}
	if v, ok := os.LookupEnv("S3_ROOT_PASSWORD"); ok {
		config.S3RootPassword = v
	}
	if v, ok := os.LookupEnv("S3_BUCKET"); ok {
		config.S3Bucket = v
	}
	if v, ok := os.LookupEnv("S3_REGION"); ok {
		config.S3Region = v
	}
	if v, ok := os.LookupEnv("S3_BASE_ENDPOINT"); ok {
		config.S3BaseEndpoint = v
	}
	if v, ok := os.LookupEnv("EMAIL_SENDER"); ok {
		config.EmailSender = v
	}
}
