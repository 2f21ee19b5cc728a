package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/taskhub/internal/flagx"
	"github.com/dmitrijs2005/taskhub/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "48h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config.
type JsonConfig struct {
	Address               string         `json:"address"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	HashCost              int            `json:"hash_cost"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	EmailSender           string         `json:"email_sender"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a deployment pointing at a broken config file should
// not come up.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.Address = c.Address
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.HashCost = c.HashCost
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.EmailSender = c.EmailSender
}
