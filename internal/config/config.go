package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nextscaffold/scaffold/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Configuration keys.
const (
	KeyProvider          = "provider"
	KeyModel             = "model"
	KeyBaseURL           = "base_url"
	KeyAPIKeyEnv         = "api_key_env"
	KeyMaxAttempts       = "max_attempts"
	KeyBootstrapCommand  = "bootstrap.command"
	KeyBootstrapArgs     = "bootstrap.args"
	KeyBootstrapFlag     = "bootstrap.template_flag"
	KeyBootstrapTemplate = "bootstrap.template"
	KeyBootstrapMinVer   = "bootstrap.min_version"
	KeyExclude           = "exclude"
)

// Default models per provider.
const (
	DefaultModel       = "gpt-3.5-turbo-instruct"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Settings is the resolved configuration used by the scaffold command.
type Settings struct {
	Provider    string    `mapstructure:"provider"`
	Model       string    `mapstructure:"model"`
	BaseURL     string    `mapstructure:"base_url"`
	APIKeyEnv   string    `mapstructure:"api_key_env"`
	MaxAttempts int       `mapstructure:"max_attempts"`
	Bootstrap   Bootstrap `mapstructure:"bootstrap"`
	Exclude     []string  `mapstructure:"exclude"`
}

// Bootstrap describes the external command that creates the base project.
type Bootstrap struct {
	Command      string   `mapstructure:"command"`
	Args         []string `mapstructure:"args"`
	TemplateFlag string   `mapstructure:"template_flag"`
	Template     string   `mapstructure:"template"`
	MinVersion   string   `mapstructure:"min_version"`
}

// KeyEnv returns the name of the environment variable holding the API key
// for the configured provider.
func (s Settings) KeyEnv() string {
	if s.APIKeyEnv != "" {
		return s.APIKeyEnv
	}
	switch s.Provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "fake":
		return ""
	default:
		return "OPENAI_API_KEY"
	}
}

// EffectiveModel returns the model to request. The OpenAI default is
// swapped for the Gemini default when the gemini provider is selected.
func (s Settings) EffectiveModel() string {
	if s.Provider == "gemini" && (s.Model == "" || s.Model == DefaultModel) {
		return DefaultGeminiModel
	}
	if s.Model == "" {
		return DefaultModel
	}
	return s.Model
}

// APIKey returns the credential for the configured provider, or "" if unset.
func (s Settings) APIKey() string {
	name := s.KeyEnv()
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}

// Dir returns the path to the config directory (~/.scaffold/), honoring
// SCAFFOLD_HOME when set.
func Dir() string {
	if override := os.Getenv(branding.EnvVar("home")); override != "" {
		return override
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.scaffold/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault(KeyProvider, "openai")
	viper.SetDefault(KeyModel, DefaultModel)
	viper.SetDefault(KeyBaseURL, "https://api.openai.com/v1")
	viper.SetDefault(KeyAPIKeyEnv, "")
	viper.SetDefault(KeyMaxAttempts, 0)
	viper.SetDefault(KeyBootstrapCommand, "yarn")
	viper.SetDefault(KeyBootstrapArgs, []string{"create", "next-app"})
	viper.SetDefault(KeyBootstrapFlag, "-e")
	viper.SetDefault(KeyBootstrapTemplate, "with-tailwindcss")
	viper.SetDefault(KeyBootstrapMinVer, "1.0.0")
	viper.SetDefault(KeyExclude, []string{"node_modules", ".git"})
}

// Load initializes Viper to read from the config file and environment.
// A .env file in the working directory is loaded into the process
// environment first; variables already set win.
func Load() {
	_ = godotenv.Load()

	viper.Reset()
	setDefaults()
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Current decodes the loaded configuration into Settings.
func Current() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if s.MaxAttempts < 0 {
		return Settings{}, fmt.Errorf("%s must be >= 0, got %d", KeyMaxAttempts, s.MaxAttempts)
	}
	return s, nil
}

// Override sets a value for the current process only (used for CLI flags).
func Override(key string, value any) {
	viper.Set(key, value)
}

// Get returns a config value by key. Returns empty string if not set.
// Lists are joined with commas, the form Set accepts them in.
func Get(key string) string {
	switch v := viper.Get(key).(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, p := range v {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
