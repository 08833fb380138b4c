package cmd

import (
	"context"
	"fmt"

	"github.com/DachengChen/paiAnalyst/ai"
	"github.com/DachengChen/paiAnalyst/analyst"
	"github.com/DachengChen/paiAnalyst/applog"
	"github.com/DachengChen/paiAnalyst/chat"
	"github.com/DachengChen/paiAnalyst/config"
	"github.com/DachengChen/paiAnalyst/db"
	"github.com/DachengChen/paiAnalyst/retrieval"
	"github.com/DachengChen/paiAnalyst/session"
)

// backend holds the long-lived services shared by every session.
// Any of them may be nil when the matching section of the config is
// empty; the chat controller reports that to the user instead of failing.
type backend struct {
	cfg        *config.AppConfig
	warehouse  *db.DB
	gateway    *analyst.Client
	index      *retrieval.Index
	multi      *retrieval.MultiModel
	summarizer *ai.Summarizer
}

func newBackend(ctx context.Context, cfg *config.AppConfig) *backend {
	b := &backend{cfg: cfg}

	if cfg.Warehouse.Driver != "" && (cfg.Warehouse.DSNValue != "" || cfg.Warehouse.Database != "") {
		wh, err := db.Connect(ctx, cfg.Warehouse)
		if err != nil {
			applog.Warn("warehouse unavailable: %v", err)
		} else {
			b.warehouse = wh
			applog.Info("connected to %s", wh)
		}
	}

	if cfg.Analyst.Host != "" {
		var enhancer analyst.Enhancer
		if cfg.Analyst.SemanticModelPath != "" {
			if p := ai.Optional(cfg.AI, cfg.AI.Enhancer); p != nil {
				enhancer = ai.NewPromptEnhancer(p, cfg.Analyst.SemanticModelPath)
			}
		}
		b.gateway = analyst.New(cfg.Analyst, enhancer)
	}

	if ix, err := openIndex(cfg); err != nil {
		applog.Warn("document index unavailable: %v", err)
	} else {
		b.index = ix
		models := ai.NewProviders(cfg.AI, cfg.Retrieval.Models)
		labels := make([]string, len(models))
		for i, m := range models {
			labels[i] = m.Label
		}
		b.multi = retrieval.NewMultiModel(ix, models, cfg.Retrieval.TopK,
			retrieval.NewAnswerLog(cfg.Retrieval.AnswerLogPath, labels))
	}

	b.summarizer = ai.NewSummarizer(ai.Optional(cfg.AI, cfg.AI.Summarizer))
	return b
}

// openIndex opens the persistent document index. Embeddings come from
// OpenAI, so the index is unavailable without an OpenAI key.
func openIndex(cfg *config.AppConfig) (*retrieval.Index, error) {
	if cfg.AI.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("no OpenAI API key configured for embeddings")
	}
	return retrieval.Open(cfg.Retrieval.IndexDir, cfg.Retrieval.Collection,
		retrieval.OpenAIEmbeddings(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.EmbeddingModel))
}

// newController builds a controller with a fresh conversation. Absent
// services are passed as untyped nil so the controller can detect them.
func (b *backend) newController() *chat.Controller {
	var (
		gw    chat.Gateway
		exec  db.Executor
		multi chat.Answerer
	)
	if b.gateway != nil {
		gw = b.gateway
	}
	if b.warehouse != nil {
		exec = b.warehouse
	}
	if b.multi != nil {
		multi = b.multi
	}
	return chat.New(session.NewStore(), gw, exec, multi)
}

func (b *backend) Close() {
	if b.warehouse != nil {
		b.warehouse.Close()
	}
}
