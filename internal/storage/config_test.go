package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("S3_ENDPOINT", "http://minio:9000")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_ACCESS_KEY_ID", "test-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")

	opts := OptionsFromEnv()
	assert.Equal(t, "http://minio:9000", opts.Endpoint)
	assert.Equal(t, "us-east-1", opts.Region, "region defaults when unset")
	assert.Equal(t, "test-key", opts.AccessKey)
}

func TestAWSConfig(t *testing.T) {
	tests := []struct {
		name string
		opts S3Options
	}{
		{
			name: "region only",
			opts: S3Options{Region: "ap-southeast-2"},
		},
		{
			name: "custom endpoint",
			opts: S3Options{Region: "us-east-1", Endpoint: "http://minio:9000"},
		},
		{
			name: "static credentials",
			opts: S3Options{Region: "us-east-1", AccessKey: "k", SecretKey: "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := awsConfig(context.Background(), tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.opts.Region, cfg.Region)
		})
	}
}
