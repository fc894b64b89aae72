// Package config resolves sheets2docs settings from defaults, an optional
// TOML file and SHEETS2DOCS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/rafaeltorresng/Sheets-to-Docs/internal/docbuild"
)

const (
	// ConfigFileName is the base name of the config file
	ConfigFileName = "config"
	// ConfigFileExt is the config file format
	ConfigFileExt = "toml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "SHEETS2DOCS"
	// AppDirName is the per-user configuration directory name
	AppDirName = "sheets2docs"
)

// Config is the resolved configuration.
type Config struct {
	CredentialsFile string        `mapstructure:"credentials_file" toml:"credentials_file"`
	TokenFile       string        `mapstructure:"token_file" toml:"token_file"`
	RedirectAddr    string        `mapstructure:"redirect_addr" toml:"redirect_addr"`
	LogLevel        string        `mapstructure:"log_level" toml:"log_level"`
	SheetIndex      int           `mapstructure:"sheet_index" toml:"sheet_index"`
	Drive           DriveConfig   `mapstructure:"drive" toml:"drive"`
	Batch           BatchConfig   `mapstructure:"batch" toml:"batch"`
	Labels          LabelsConfig  `mapstructure:"labels" toml:"labels"`
	Preview         PreviewConfig `mapstructure:"preview" toml:"preview"`
}

// DriveConfig controls where generated documents are placed.
type DriveConfig struct {
	FolderID string `mapstructure:"folder_id" toml:"folder_id"`
}

// BatchConfig holds per-mode batch policies.
type BatchConfig struct {
	Individual   BatchPolicy `mapstructure:"individual" toml:"individual"`
	Consolidated BatchPolicy `mapstructure:"consolidated" toml:"consolidated"`
}

// BatchPolicy is the request count per batchUpdate and the pause between
// batches.
type BatchPolicy struct {
	Size  int           `mapstructure:"size" toml:"size"`
	Delay time.Duration `mapstructure:"delay" toml:"delay"`
}

// LabelsConfig overrides the fixed document text.
type LabelsConfig struct {
	Placeholder         string `mapstructure:"placeholder" toml:"placeholder"`
	TitlePrefix         string `mapstructure:"title_prefix" toml:"title_prefix"`
	ConsolidatedTitle   string `mapstructure:"consolidated_title" toml:"consolidated_title"`
	ConsolidatedHeading string `mapstructure:"consolidated_heading" toml:"consolidated_heading"`
	GeneratedOn         string `mapstructure:"generated_on" toml:"generated_on"`
	Total               string `mapstructure:"total" toml:"total"`
	UntitledItem        string `mapstructure:"untitled_item" toml:"untitled_item"`
	UntitledDocument    string `mapstructure:"untitled_document" toml:"untitled_document"`
	DateFormat          string `mapstructure:"date_format" toml:"date_format"`
	Separator           string `mapstructure:"separator" toml:"separator"`
	SeparatorWidth      int    `mapstructure:"separator_width" toml:"separator_width"`
}

// PreviewConfig controls the data preview table.
type PreviewConfig struct {
	MaxRows int `mapstructure:"max_rows" toml:"max_rows"`
}

// LoadOptions points Load at explicit files instead of the default search.
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set
	ConfigFilePath string
	// ConfigDirPath overrides the per-user config directory
	ConfigDirPath string
	// EnvFiles are loaded into the process environment first
	EnvFiles []string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	l := docbuild.DefaultLabels()
	return &Config{
		CredentialsFile: "credentials.json",
		TokenFile:       defaultTokenPath(),
		RedirectAddr:    "localhost:8501",
		LogLevel:        "info",
		SheetIndex:      0,
		Batch: BatchConfig{
			Individual:   BatchPolicy{Size: 20, Delay: 800 * time.Millisecond},
			Consolidated: BatchPolicy{Size: 15, Delay: 1200 * time.Millisecond},
		},
		Labels: LabelsConfig{
			Placeholder:         l.Placeholder,
			TitlePrefix:         l.TitlePrefix,
			ConsolidatedTitle:   l.ConsolidatedTitle,
			ConsolidatedHeading: l.ConsolidatedHeading,
			GeneratedOn:         l.GeneratedOn,
			Total:               l.Total,
			UntitledItem:        l.UntitledItem,
			UntitledDocument:    l.UntitledDocument,
			DateFormat:          l.DateFormat,
			Separator:           l.Separator,
			SeparatorWidth:      l.SeparatorWidth,
		},
		Preview: PreviewConfig{MaxRows: 20},
	}
}

func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "token.json"
	}
	return filepath.Join(dir, AppDirName, "token.json")
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, AppDirName), nil
}

// Load resolves the configuration. It returns the config and the path of the
// file it was read from, or "" when only defaults and environment apply.
func Load(opts LoadOptions) (*Config, string, error) {
	if err := loadEnvFiles(opts.EnvFiles); err != nil {
		return nil, "", err
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			var err error
			if cfgDir, err = ConfigDir(); err != nil {
				return nil, "", err
			}
		}

		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(".")
		v.AddConfigPath(cfgDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, "", fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			resolvedPath = v.ConfigFileUsed()
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("credentials_file", d.CredentialsFile)
	v.SetDefault("token_file", d.TokenFile)
	v.SetDefault("redirect_addr", d.RedirectAddr)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("sheet_index", d.SheetIndex)
	v.SetDefault("drive.folder_id", d.Drive.FolderID)
	v.SetDefault("batch.individual.size", d.Batch.Individual.Size)
	v.SetDefault("batch.individual.delay", d.Batch.Individual.Delay)
	v.SetDefault("batch.consolidated.size", d.Batch.Consolidated.Size)
	v.SetDefault("batch.consolidated.delay", d.Batch.Consolidated.Delay)
	v.SetDefault("labels.placeholder", d.Labels.Placeholder)
	v.SetDefault("labels.title_prefix", d.Labels.TitlePrefix)
	v.SetDefault("labels.consolidated_title", d.Labels.ConsolidatedTitle)
	v.SetDefault("labels.consolidated_heading", d.Labels.ConsolidatedHeading)
	v.SetDefault("labels.generated_on", d.Labels.GeneratedOn)
	v.SetDefault("labels.total", d.Labels.Total)
	v.SetDefault("labels.untitled_item", d.Labels.UntitledItem)
	v.SetDefault("labels.untitled_document", d.Labels.UntitledDocument)
	v.SetDefault("labels.date_format", d.Labels.DateFormat)
	v.SetDefault("labels.separator", d.Labels.Separator)
	v.SetDefault("labels.separator_width", d.Labels.SeparatorWidth)
	v.SetDefault("preview.max_rows", d.Preview.MaxRows)
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		if fileExists(".env") {
			return godotenv.Load()
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Batch.Individual.Size < 1 {
		return fmt.Errorf("batch.individual.size must be at least 1, got %d", c.Batch.Individual.Size)
	}
	if c.Batch.Consolidated.Size < 1 {
		return fmt.Errorf("batch.consolidated.size must be at least 1, got %d", c.Batch.Consolidated.Size)
	}
	if c.Batch.Individual.Delay < 0 || c.Batch.Consolidated.Delay < 0 {
		return fmt.Errorf("batch delays must not be negative")
	}
	if c.Labels.SeparatorWidth < 0 {
		return fmt.Errorf("labels.separator_width must not be negative, got %d", c.Labels.SeparatorWidth)
	}
	if c.SheetIndex < 0 {
		return fmt.Errorf("sheet_index must not be negative, got %d", c.SheetIndex)
	}
	return nil
}

// DocLabels converts the label settings for document layout.
func (c *Config) DocLabels() docbuild.Labels {
	return docbuild.Labels{
		Placeholder:         c.Labels.Placeholder,
		TitlePrefix:         c.Labels.TitlePrefix,
		ConsolidatedTitle:   c.Labels.ConsolidatedTitle,
		ConsolidatedHeading: c.Labels.ConsolidatedHeading,
		GeneratedOn:         c.Labels.GeneratedOn,
		Total:               c.Labels.Total,
		UntitledItem:        c.Labels.UntitledItem,
		UntitledDocument:    c.Labels.UntitledDocument,
		DateFormat:          c.Labels.DateFormat,
		Separator:           c.Labels.Separator,
		SeparatorWidth:      c.Labels.SeparatorWidth,
	}
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() (string, error) {
	out := tomlConfig{
		CredentialsFile: c.CredentialsFile,
		TokenFile:       c.TokenFile,
		RedirectAddr:    c.RedirectAddr,
		LogLevel:        c.LogLevel,
		SheetIndex:      c.SheetIndex,
		Drive:           c.Drive,
		Batch: tomlBatch{
			Individual:   tomlPolicy{Size: c.Batch.Individual.Size, Delay: c.Batch.Individual.Delay.String()},
			Consolidated: tomlPolicy{Size: c.Batch.Consolidated.Size, Delay: c.Batch.Consolidated.Delay.String()},
		},
		Labels:  c.Labels,
		Preview: c.Preview,
	}
	b, err := toml.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode configuration: %w", err)
	}
	return string(b), nil
}

// tomlConfig mirrors Config with durations as strings viper can parse back.
type tomlConfig struct {
	CredentialsFile string        `toml:"credentials_file"`
	TokenFile       string        `toml:"token_file"`
	RedirectAddr    string        `toml:"redirect_addr"`
	LogLevel        string        `toml:"log_level"`
	SheetIndex      int           `toml:"sheet_index"`
	Drive           DriveConfig   `toml:"drive"`
	Batch           tomlBatch     `toml:"batch"`
	Labels          LabelsConfig  `toml:"labels"`
	Preview         PreviewConfig `toml:"preview"`
}

type tomlBatch struct {
	Individual   tomlPolicy `toml:"individual"`
	Consolidated tomlPolicy `toml:"consolidated"`
}

type tomlPolicy struct {
	Size  int    `toml:"size"`
	Delay string `toml:"delay"`
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
