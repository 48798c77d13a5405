package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/instashare/instashare/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, any non-zero field is copied into the runtime
// Config struct. Duration fields are given in seconds.
type JsonConfig struct {
	EndpointAddr        string `json:"endpoint_addr"`
	DatabaseDSN         string `json:"database_dsn"`
	SecretKey           string `json:"secret_key"`
	S3RootUser          string `json:"s3_root_user"`
	S3RootPassword      string `json:"s3_root_password"`
	S3Bucket            string `json:"s3_bucket"`
	S3Region            string `json:"s3_region"`
	S3BaseEndpoint      string `json:"s3_base_endpoint"`
	AMQPURL             string `json:"amqp_url"`
	StoreQueue          string `json:"store_queue"`
	ZipperQueue         string `json:"zipper_queue"`
	StatusQueue         string `json:"status_queue"`
	SpoolDir            string `json:"spool_dir"`
	StoreTimeoutSeconds int    `json:"store_timeout_seconds"`
	StoreAttempts       int    `json:"store_attempts"`
	MaxUploadBytes      int64  `json:"max_upload_bytes"`
	RejectDuplicates    *bool  `json:"reject_duplicates"`
	SMTPAddr            string `json:"smtp_addr"`
	SMTPFrom            string `json:"smtp_from"`
}

// parseJson loads configuration values from the JSON file pointed to by the
// -c/-config command-line flags. If no flag is set, nothing is loaded. If the
// file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
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

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.AMQPURL != "" {
		config.AMQPURL = c.AMQPURL
	}
	if c.StoreQueue != "" {
		config.StoreQueue = c.StoreQueue
	}
	if c.ZipperQueue != "" {
		config.ZipperQueue = c.ZipperQueue
	}
	if c.StatusQueue != "" {
		config.StatusQueue = c.StatusQueue
	}
	if c.SpoolDir != "" {
		config.SpoolDir = c.SpoolDir
	}
	if c.StoreTimeoutSeconds > 0 {
		config.StoreTimeout = time.Duration(c.StoreTimeoutSeconds) * time.Second
	}
	if c.StoreAttempts > 0 {
		config.StoreAttempts = c.StoreAttempts
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.RejectDuplicates != nil {
		config.RejectDuplicates = *c.RejectDuplicates
	}
	if c.SMTPAddr != "" {
		config.SMTPAddr = c.SMTPAddr
	}
	if c.SMTPFrom != "" {
		config.SMTPFrom = c.SMTPFrom
	}
}
