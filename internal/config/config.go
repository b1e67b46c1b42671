package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DocumentsConfig points at the corpus to index.
type DocumentsConfig struct {
	Path string `yaml:"path"`
}

// IndexConfig configures chunking, retrieval and index persistence.
type IndexConfig struct {
	Path         string `yaml:"path"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	TopK         int    `yaml:"top_k"`
	Store        string `yaml:"store"` // memory | qdrant
}

// OllamaEmbedderConfig configures the local embedding server.
type OllamaEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// OpenAIEmbedderConfig configures the hosted embedder. The key is named by
// environment variable, never stored in the file.
type OpenAIEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"` // auto | tfidf | ollama | openai
	Ollama *OllamaEmbedderConfig `yaml:"ollama,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EndpointConfig configures one generation backend.
type EndpointConfig struct {
	URL       string `yaml:"url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// BackendsConfig wires the three generation backends.
type BackendsConfig struct {
	Default string         `yaml:"default"` // local | openai | gemini
	Local   EndpointConfig `yaml:"local"`
	OpenAI  EndpointConfig `yaml:"openai"`
	Gemini  EndpointConfig `yaml:"gemini"`
}

// ChatConfig holds chat generation defaults. Temperature is a pointer so
// an explicit zero in the file is distinguishable from an absent key.
type ChatConfig struct {
	MaxTokens    int      `yaml:"max_tokens"`
	Temperature  *float64 `yaml:"temperature"`
	SystemPrompt string   `yaml:"system_prompt,omitempty"`
}

// CompletionConfig holds code completion defaults.
type CompletionConfig struct {
	MaxTokens       int     `yaml:"max_tokens"`
	Temperature     float64 `yaml:"temperature"`
	ContextMaxChars int     `yaml:"context_max_chars"`
}

// SummaryConfig configures the corpus digest.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Index      IndexConfig      `yaml:"index"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Qdrant     *QdrantConfig    `yaml:"qdrant,omitempty"`
	Backends   BackendsConfig   `yaml:"backends"`
	Chat       ChatConfig       `yaml:"chat"`
	Completion CompletionConfig `yaml:"completion"`
	Summary    SummaryConfig    `yaml:"summary"`
}

// APIKey resolves the endpoint's key from the environment. Empty when the
// variable is unset, which downgrades the backend to "configured but
// unauthenticated" rather than failing startup.
func (e EndpointConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/assistant/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "assistant", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Documents.Path == "" {
		cfg.Documents.Path = "./docs"
	}
	if cfg.Index.Path == "" {
		cfg.Index.Path = "./index"
	}
	if cfg.Index.ChunkSize == 0 {
		cfg.Index.ChunkSize = 1000
	}
	if cfg.Index.ChunkOverlap == 0 {
		cfg.Index.ChunkOverlap = 150
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 5
	}
	if cfg.Index.Store == "" {
		cfg.Index.Store = "memory"
	}

	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "auto"
	}
	if cfg.Embedder.Ollama == nil {
		cfg.Embedder.Ollama = &OllamaEmbedderConfig{}
	}
	if cfg.Embedder.Ollama.BaseURL == "" {
		cfg.Embedder.Ollama.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedder.Ollama.Model == "" {
		cfg.Embedder.Ollama.Model = "nomic-embed-text"
	}
	if cfg.Embedder.Ollama.TimeoutSecs == 0 {
		cfg.Embedder.Ollama.TimeoutSecs = 30
	}
	if cfg.Embedder.OpenAI == nil {
		cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
	}
	if cfg.Embedder.OpenAI.APIKeyEnv == "" {
		cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedder.OpenAI.Model == "" {
		cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
	}

	if cfg.Backends.Default == "" {
		cfg.Backends.Default = "local"
	}
	if cfg.Backends.Local.URL == "" {
		cfg.Backends.Local.URL = "http://localhost:11434/api/generate"
	}
	if cfg.Backends.Local.Model == "" {
		cfg.Backends.Local.Model = "deepseek-coder:6.7b"
	}
	if cfg.Backends.OpenAI.URL == "" {
		cfg.Backends.OpenAI.URL = "https://api.openai.com/v1/chat/completions"
	}
	if cfg.Backends.OpenAI.Model == "" {
		cfg.Backends.OpenAI.Model = "gpt-3.5-turbo"
	}
	if cfg.Backends.OpenAI.APIKeyEnv == "" {
		cfg.Backends.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Backends.Gemini.URL == "" {
		cfg.Backends.Gemini.URL = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	if cfg.Backends.Gemini.Model == "" {
		cfg.Backends.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Backends.Gemini.APIKeyEnv == "" {
		cfg.Backends.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}

	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 512
	}
	if cfg.Chat.Temperature == nil {
		temp := 0.3
		cfg.Chat.Temperature = &temp
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 128
	}
	if cfg.Completion.ContextMaxChars == 0 {
		cfg.Completion.ContextMaxChars = 4000
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 5
	}
}
