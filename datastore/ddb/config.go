/*
 * Copyright © 2025 Lakefront Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lakefront/batchstore/batch"
	"github.com/lakefront/batchstore/errors"
)

// Store-imposed ceilings. DynamoDB rejects batch calls above these sizes,
// so chunking must match them exactly.
const (
	// MaxReadBatchSize is the most keys one BatchGetItem call may carry.
	MaxReadBatchSize = 100
	// MaxWriteBatchSize is the most items one BatchWriteItem call may carry.
	MaxWriteBatchSize = 25
	// MaxItemSize is the largest item DynamoDB accepts, in bytes.
	MaxItemSize = 400 * 1024
)

// Config carries everything a store needs: endpoint, credentials, table,
// batch size limits and the retry policy. There is no process-wide state;
// a Config is passed in explicitly at construction.
type Config struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	// Endpoint overrides the service endpoint, typically for DynamoDB
	// Local. Empty means the real AWS endpoint for Region.
	Endpoint  string `yaml:"endpoint"`
	TableName string `yaml:"tableName"`

	// ReadBatchSize and WriteBatchSize cap entries per batch call. They
	// default to the store ceilings and may only be lowered.
	ReadBatchSize  int `yaml:"readBatchSize"`
	WriteBatchSize int `yaml:"writeBatchSize"`

	// Concurrency is how many chunks may be in flight at once per batch
	// operation. Defaults to 1.
	Concurrency int `yaml:"concurrency"`

	Retry RetryConfig `yaml:"retry"`
}

// RetryConfig is the YAML form of a retry policy; delays are duration
// strings such as "100ms" or "5s".
type RetryConfig struct {
	MaxAttempts int    `yaml:"maxAttempts"`
	BaseDelay   string `yaml:"baseDelay"`
	MaxDelay    string `yaml:"maxDelay"`
}

// DefaultConfig returns a Config with the store ceilings, sequential chunk
// execution and the default retry policy. Credentials and table are left
// for the caller.
func DefaultConfig() Config {
	policy := batch.DefaultRetryPolicy()
	return Config{
		ReadBatchSize:  MaxReadBatchSize,
		WriteBatchSize: MaxWriteBatchSize,
		Concurrency:    1,
		Retry: RetryConfig{
			MaxAttempts: policy.MaxAttempts,
			BaseDelay:   policy.BaseDelay.String(),
			MaxDelay:    policy.MaxDelay.String(),
		},
	}
}

// LoadConfig reads a YAML config file. Missing optional fields take their
// defaults; the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFromEnv builds a Config from AWS_REGION, AWS_ACCESS_KEY,
// AWS_SECRET_KEY, DDB_ENDPOINT and DDB_TABLE_NAME. Batch sizes and retry
// keep their defaults.
func ConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()
	cfg.Region = os.Getenv("AWS_REGION")
	cfg.AccessKey = os.Getenv("AWS_ACCESS_KEY")
	cfg.SecretKey = os.Getenv("AWS_SECRET_KEY")
	cfg.Endpoint = os.Getenv("DDB_ENDPOINT")
	cfg.TableName = os.Getenv("DDB_TABLE_NAME")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges and that required fields are present.
func (c *Config) Validate() error {
	if c.TableName == "" {
		return errors.NewValidationError("tableName", "must not be empty")
	}
	if c.ReadBatchSize < 1 || c.ReadBatchSize > MaxReadBatchSize {
		return errors.NewValidationError("readBatchSize",
			fmt.Sprintf("must be between 1 and %d", MaxReadBatchSize))
	}
	if c.WriteBatchSize < 1 || c.WriteBatchSize > MaxWriteBatchSize {
		return errors.NewValidationError("writeBatchSize",
			fmt.Sprintf("must be between 1 and %d", MaxWriteBatchSize))
	}
	if c.Concurrency < 1 {
		return errors.NewValidationError("concurrency", "must be at least 1")
	}
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	return nil
}

// RetryPolicy converts the YAML retry section into a batch.RetryPolicy.
func (c *Config) RetryPolicy() (batch.RetryPolicy, error) {
	policy := batch.RetryPolicy{MaxAttempts: c.Retry.MaxAttempts}

	var err error
	if policy.BaseDelay, err = parseDelay("retry.baseDelay", c.Retry.BaseDelay); err != nil {
		return batch.RetryPolicy{}, err
	}
	if policy.MaxDelay, err = parseDelay("retry.maxDelay", c.Retry.MaxDelay); err != nil {
		return batch.RetryPolicy{}, err
	}
	if err := policy.Validate(); err != nil {
		return batch.RetryPolicy{}, err
	}
	return policy, nil
}

func parseDelay(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.NewValidationError(field, "must be a duration such as 100ms or 5s")
	}
	return d, nil
}
