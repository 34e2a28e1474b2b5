package pipeline

import (
	"testing"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *config.Config {
	v := viper.New()
	config.SetDefaults(v)
	return config.FromViper(v)
}

func TestNewFromConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Forecast.Workers = 9

	p, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, 9, p.config.WorkerCount)

	cfg.Forecast.Model = "linear"
	_, err = NewFromConfig(cfg)
	assert.NoError(t, err)
}

func TestNewFromConfigRejectsUnknownModel(t *testing.T) {
	cfg := defaultConfig()
	cfg.Forecast.Model = "prophet"

	_, err := NewFromConfig(cfg)
	assert.Error(t, err)
}
