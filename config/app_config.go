package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AnalystConfig points at the hosted text-to-SQL service.
type AnalystConfig struct {
	Host              string `json:"host"`
	Token             string `json:"token,omitempty"`
	Database          string `json:"database"`
	Schema            string `json:"schema"`
	Stage             string `json:"stage"`
	File              string `json:"file"`
	SemanticModelPath string `json:"semantic_model_path,omitempty"` // local YAML copy for prompt enhancement
	TimeoutMS         int    `json:"timeout_ms"`
}

// SemanticModelFile is the fully-qualified stage path sent with every
// request, e.g. @DB.SCHEMA.STAGE/model.yaml.
func (a AnalystConfig) SemanticModelFile() string {
	return fmt.Sprintf("@%s.%s.%s/%s", a.Database, a.Schema, a.Stage, a.File)
}

// Endpoint is the message URL of the analyst service.
func (a AnalystConfig) Endpoint() string {
	host := strings.TrimSuffix(a.Host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host + "/api/v2/cortex/analyst/message"
	}
	return "https://" + host + "/api/v2/cortex/analyst/message"
}

// Timeout returns the request ceiling, 5s when unset.
func (a AnalystConfig) Timeout() time.Duration {
	if a.TimeoutMS <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// RetrievalConfig configures the document index and model fan-out.
type RetrievalConfig struct {
	IndexDir      string   `json:"index_dir"`
	Collection    string   `json:"collection"`
	TopK          int      `json:"top_k"`
	Models        []string `json:"models"`
	AnswerLogPath string   `json:"answer_log_path"`
	DocsDir       string   `json:"docs_dir,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// AppConfig is the top-level config file structure (~/.paianalyst/config.json).
type AppConfig struct {
	AI        AIConfig        `json:"ai"`
	Analyst   AnalystConfig   `json:"analyst"`
	Warehouse WarehouseConfig `json:"warehouse"`
	Retrieval RetrievalConfig `json:"retrieval"`
	Server    ServerConfig    `json:"server"`
}

// Dir returns ~/.paianalyst.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".paianalyst"), nil
}

// DefaultPath returns ~/.paianalyst/config.json.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	indexDir := "file_index_db"
	if dir, err := Dir(); err == nil {
		indexDir = filepath.Join(dir, "index")
	}
	return &AppConfig{
		AI: DefaultAIConfig(),
		Analyst: AnalystConfig{
			Database:  "CORTEX_ANALYST_DEMO",
			Schema:    "REVENUE_TIMESERIES",
			Stage:     "RAW_DATA",
			File:      "semantic_model.yaml",
			TimeoutMS: 5000,
		},
		Warehouse: WarehouseConfig{
			Driver:  DriverPgx,
			Host:    "localhost",
			Port:    5432,
			SSLMode: "prefer",
			SSH:     SSHConfig{Port: 22},
		},
		Retrieval: RetrievalConfig{
			IndexDir:   indexDir,
			Collection: "file-index",
			TopK:       4,
			Models: []string{
				ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderGrok,
			},
			AnswerLogPath: "multimodel_answers_log.csv",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadAppConfig loads .env, then ~/.paianalyst/config.json.
func LoadAppConfig() (*AppConfig, error) {
	path, err := DefaultPath()
	if err != nil {
		_ = godotenv.Load()
		cfg := Default()
		applyEnv(cfg)
		return cfg, nil
	}
	return Load(path)
}

// Load reads the config at path; returns defaults if it does not exist.
// A .env file in the working directory is loaded first, and environment
// variables override file values.
func Load(path string) (*AppConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&cfg.AI.OpenAI.APIKey, "OPENAI_API_KEY")
	set(&cfg.AI.Anthropic.APIKey, "ANTHROPIC_API_KEY", "CLAUDE_API_KEY")
	set(&cfg.AI.Gemini.APIKey, "GEMINI_API_KEY")
	set(&cfg.AI.Grok.APIKey, "XAI_API_KEY")
	set(&cfg.AI.Ollama.Host, "OLLAMA_HOST")
	set(&cfg.Analyst.Host, "ANALYST_HOST")
	set(&cfg.Analyst.Token, "ANALYST_TOKEN")
	set(&cfg.Warehouse.DSNValue, "WAREHOUSE_DSN")
	set(&cfg.Server.Addr, "PAIANALYST_ADDR")
}

// SaveAppConfig writes the config to ~/.paianalyst/config.json.
func SaveAppConfig(cfg *AppConfig) error {
	path, err := DefaultPath()
	if err != nil {
		return err
	}
	return Save(path, cfg)
}

// Save writes cfg to path, readable only by the owner.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}
