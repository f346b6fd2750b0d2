package main

import (
	"context"
	"encoding/base64"
	"fmt"

	"pinnaclepm/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	hashKey, err := base64.StdEncoding.DecodeString(c.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_HASH_KEY: %w", err)
	}

	if l := len(hashKey); l != 32 && l != 64 {
		return nil, fmt.Errorf("COOKIE_HASH_KEY must decode to 32 or 64 bytes, got %d", l)
	}

	blockKey, err := base64.StdEncoding.DecodeString(c.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode COOKIE_BLOCK_KEY: %w", err)
	}

	switch len(blockKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("COOKIE_BLOCK_KEY must decode to 16, 24, or 32 bytes, got %d", len(blockKey))
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	return c, nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
