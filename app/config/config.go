package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     Log     `yaml:"log"`
	OpenAI  OpenAI  `yaml:"openai"`
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
}

type OpenAI struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://generativelanguage.googleapis.com/v1beta/openai"`
	// API token; when empty the assistant runs on the rule-based extractor only
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// Model name
	Model string `yaml:"model" example:"gemini-2.0-flash"`
}

type Server struct {
	// HTTP listen address
	Addr string `yaml:"addr" example:":8080" validate:"required"`
	// Serve the assistant as an MCP tool over stdio in addition to HTTP
	MCP bool `yaml:"mcp" example:"false"`
}

type Storage struct {
	// Directory for conversation logs, the action log and outbox artifacts
	DataDir string `yaml:"data_dir" example:"data" validate:"required"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

// Load reads config.yaml from the working directory. A missing file is not an
// error: the assistant degrades to the rule-based extractor with defaults.
func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err == nil {
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if result.OpenAI.BaseURL == "" {
		result.OpenAI.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"
	}
	if result.OpenAI.Model == "" {
		result.OpenAI.Model = "gemini-2.0-flash"
	}
	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Storage.DataDir == "" {
		result.Storage.DataDir = "data"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
