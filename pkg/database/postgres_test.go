package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/quorum/pkg/config"
)

func TestNewRejectsEmptyURL(t *testing.T) {
	cfg := &config.Config{}

	db, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "not configured")
}

func TestNewRejectsInvalidURL(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: "://not-a-url"},
	}

	db, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, db)
	assert.Contains(t, err.Error(), "parse")
}
