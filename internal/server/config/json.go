package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/linkup-social/linkup/internal/flagx"
	"github.com/linkup-social/linkup/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1h" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	BindAddr              string         `json:"bind_addr"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	OTPValidityDuration   timex.Duration `json:"otp_validity_duration"`
	SMTPHost              string         `json:"smtp_host"`
	SMTPPort              int            `json:"smtp_port"`
	SMTPUser              string         `json:"smtp_user"`
	SMTPPassword          string         `json:"smtp_password"`
	SMTPFrom              string         `json:"smtp_from"`
	ContactAddr           string         `json:"contact_addr"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path is taken from the -c or -config command-line flags;
// when neither is set, no JSON file is loaded. An unreadable or invalid file
// panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
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

	c.overlay(config)
}

// overlay copies only the fields actually present in the file onto the
// runtime Config. A partial file must not zero the fields it omits: wiping
// TokenValidityDuration, for example, would make every issued token expire
// immediately.
func (c *JsonConfig) overlay(config *Config) {

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setString(&config.BindAddr, c.BindAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.ContactAddr, c.ContactAddr)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	}
	if c.OTPValidityDuration.Duration != 0 {
		config.OTPValidityDuration = time.Duration(c.OTPValidityDuration.Duration)
	}
}
