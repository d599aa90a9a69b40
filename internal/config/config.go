// Package config loads bm's settings from ~/.config/bm/config.yaml and BM_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/nikbrunner/bmsync/internal/gitee"
	"github.com/nikbrunner/bmsync/internal/host"
	"github.com/nikbrunner/bmsync/internal/storage"
)

// EnvPrefix prefixes every environment override: BM_GITEE_TOKEN, BM_STORAGE, ...
const EnvPrefix = "BM"

// Config is the resolved application configuration.
type Config struct {
	DataDir       string      `mapstructure:"data_dir"`
	Storage       string      `mapstructure:"storage"`
	BookmarksFile string      `mapstructure:"bookmarks_file"`
	LogLevel      string      `mapstructure:"log_level"`
	Gitee         GiteeConfig `mapstructure:"gitee"`
	Cull          CullConfig  `mapstructure:"cull"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// GiteeConfig holds remote settings from the file or environment. Values
// stored with 'bm config set' take precedence.
type GiteeConfig struct {
	Token    string `mapstructure:"token"`
	Owner    string `mapstructure:"owner"`
	Repo     string `mapstructure:"repo"`
	Branch   string `mapstructure:"branch"`
	FilePath string `mapstructure:"file_path"`
	BaseURL  string `mapstructure:"base_url"`
}

// CullConfig tunes the dead-link checker.
type CullConfig struct {
	ExcludeDomains []string      `mapstructure:"exclude_domains"`
	Concurrency    int           `mapstructure:"concurrency"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Settings converts the file/env values to client settings.
func (g GiteeConfig) Settings() gitee.Settings {
	return gitee.Settings{
		Token:    g.Token,
		Owner:    g.Owner,
		Repo:     g.Repo,
		Branch:   g.Branch,
		FilePath: g.FilePath,
	}
}

// Level parses LogLevel, falling back to warn.
func (c Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}

// Load reads configuration. An explicit cfgFile must exist; otherwise
// config.yaml is looked up in ~/.config/bm and a missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	dataDir, err := storage.DefaultDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dataDir)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, dataDir)

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = used
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.BookmarksFile = expandHome(cfg.BookmarksFile)
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, dataDir string) {
	bookmarksFile, err := host.DefaultBookmarksPath()
	if err != nil {
		bookmarksFile = ""
	}

	v.SetDefault("data_dir", dataDir)
	v.SetDefault("storage", "sqlite")
	v.SetDefault("bookmarks_file", bookmarksFile)
	v.SetDefault("log_level", "warn")

	v.SetDefault("gitee.token", "")
	v.SetDefault("gitee.owner", "")
	v.SetDefault("gitee.repo", "")
	v.SetDefault("gitee.branch", gitee.DefaultBranch)
	v.SetDefault("gitee.file_path", gitee.DefaultFilePath)
	v.SetDefault("gitee.base_url", gitee.DefaultBaseURL)

	v.SetDefault("cull.exclude_domains", []string{"github.com", "gitlab.com"})
	v.SetDefault("cull.concurrency", 10)
	v.SetDefault("cull.timeout", "10s")
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
