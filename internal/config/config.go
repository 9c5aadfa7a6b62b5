package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port      int              `json:"port"`
	DataDir   string           `json:"data_dir"`
	LogConfig logger.LogConfig `json:"log_config"`
	AI        AIConfig         `json:"ai"`
	Coverage  CoverageConfig   `json:"coverage"`
	Cache     CacheConfig      `json:"embed_cache"`
	FileStore FileStoreConfig  `json:"file_store"`
	Upload    UploadConfig     `json:"upload"`
	CORS      []string         `json:"cors_allowlist"`
}

type AIProviderConfig struct {
	Provider        string                 `json:"provider"`
	Data            map[string]interface{} `json:"data"`
	ChatModel       string                 `json:"chat_model"`
	EmbedModel      string                 `json:"embed_model"`
	TranscribeModel string                 `json:"transcribe_model"`
}

type AIConfig struct {
	Providers     []AIProviderConfig `json:"providers"`
	Timeout       int                `json:"timeout"`
	MaxInputChars int                `json:"max_input_chars"`
	Diarization   string             `json:"diarization"`
}

// CoverageConfig carries the tunables of the coverage engine and semantic
// search. The thresholds are empirically chosen values carried over as-is;
// there is no documented derivation behind them.
type CoverageConfig struct {
	SaidThreshold   float64 `json:"said_threshold"`
	SearchThreshold float64 `json:"search_threshold"`
	MaxStepWords    int     `json:"max_step_words"`
}

type CacheConfig struct {
	Size       int `json:"size"`
	TTLMinutes int `json:"ttl_minutes"`
}

type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type UploadConfig struct {
	RateLimitSeconds   int    `json:"rate_limit_seconds"`
	StagingSweepSpec   string `json:"staging_sweep_spec"`
	StagingMaxAgeHours int    `json:"staging_max_age_hours"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data_dir is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if len(cfg.AI.Providers) == 0 {
		return nil, fmt.Errorf("ai.providers is required")
	}
	for i := range cfg.AI.Providers {
		p := &cfg.AI.Providers[i]
		if p.Provider == "" {
			return nil, fmt.Errorf("ai.providers[%d].provider is required", i)
		}
		if p.ChatModel == "" {
			p.ChatModel = "gpt-3.5-turbo"
		}
		if p.EmbedModel == "" {
			p.EmbedModel = "text-embedding-3-small"
		}
		if p.TranscribeModel == "" {
			p.TranscribeModel = "whisper-1"
		}
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 120
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 60000
	}
	if cfg.AI.Diarization == "" {
		cfg.AI.Diarization = "single-speaker"
	}
	if cfg.Coverage.SaidThreshold == 0 {
		cfg.Coverage.SaidThreshold = 0.7
	}
	if cfg.Coverage.SearchThreshold == 0 {
		cfg.Coverage.SearchThreshold = 0.6
	}
	if cfg.Coverage.MaxStepWords == 0 {
		cfg.Coverage.MaxStepWords = 40
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = 4096
	}
	if cfg.Cache.TTLMinutes == 0 {
		cfg.Cache.TTLMinutes = 120
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		cfg.FileStore.Data = map[string]interface{}{
			"dir": filepath.Join(cfg.DataDir, "blobs"),
		}
	}
	if cfg.Upload.StagingSweepSpec == "" {
		cfg.Upload.StagingSweepSpec = "30 * * * *"
	}
	if cfg.Upload.StagingMaxAgeHours == 0 {
		cfg.Upload.StagingMaxAgeHours = 24
	}
	return &cfg, nil
}
