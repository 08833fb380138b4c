package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DachengChen/paiAnalyst/config"
)

func TestNewProvider(t *testing.T) {
	cfg := config.DefaultAIConfig()

	_, err := NewProvider(cfg, config.ProviderOpenAI)
	assert.ErrorIs(t, err, ErrNotConfigured)

	cfg.OpenAI.APIKey = "k"
	p, err := NewProvider(cfg, config.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, "OpenAI (gpt-4o)", p.Name())

	_, err = NewProvider(cfg, "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewProvider(cfg, "bard")
	assert.ErrorContains(t, err, "unknown AI provider")

	assert.Nil(t, Optional(cfg, config.ProviderGemini))
	assert.NotNil(t, Optional(cfg, config.ProviderOllama))
}

func TestNewProvidersIsolatesMissingKeys(t *testing.T) {
	cfg := config.DefaultAIConfig()
	cfg.Anthropic.APIKey = "k"
	named := NewProviders(cfg, []string{config.ProviderOpenAI, config.ProviderAnthropic})
	require.Len(t, named, 2)

	assert.Equal(t, "ChatGPT", named[0].Label)
	_, err := named[0].Provider.Chat(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.Equal(t, "Claude", named[1].Label)
	assert.IsType(t, &Anthropic{}, named[1].Provider)
}
