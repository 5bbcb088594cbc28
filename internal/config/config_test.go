package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aa5177-adm/ticket-ai/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.70, cfg.SimilarityFloor)
	assert.Equal(t, 0.30, cfg.ConfidenceLow)
	assert.Equal(t, 0.50, cfg.ConfidenceMedium)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, cfg.DatabaseURL, cfg.NotifyURL)
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("TICKETASSIGN_PORT", "not-a-number")
	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_Validate_WeightRowsSumToOne(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	for _, p := range []model.Priority{model.PriorityCritical, model.PriorityHigh, model.PriorityMedium, model.PriorityLow} {
		row := cfg.Weights[p]
		assert.InDelta(t, 1.0, row.Sum(), 1e-9, "priority %s", p)
	}
}

func TestConfig_Validate_BadWeightRow(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.Weights[model.PriorityCritical] = WeightRow{Similarity: 0.5, Skill: 0.5, Availability: 0.5}
	err = cfg.Validate()
	assert.Error(t, err)
}

func TestConfig_Validate_JWTKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/key.pem"
	require.NoError(t, os.WriteFile(path, []byte("fake-key-material"), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.JWTPrivateKeyPath = path
	err = cfg.Validate()
	assert.Error(t, err)

	require.NoError(t, os.Chmod(path, 0o600))
	err = cfg.Validate()
	assert.NoError(t, err)
}
