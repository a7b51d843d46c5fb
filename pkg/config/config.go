package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/noticegen/pkg/maven"
	"github.com/fulmenhq/noticegen/pkg/notice"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for one noticegen run
type Config struct {
	NoticeOutputPath   string                      `mapstructure:"noticeOutputPath"`
	ExistingNoticePath string                      `mapstructure:"existingNoticePath"`
	Strict             bool                        `mapstructure:"strict"`
	MatchWithExisting  bool                        `mapstructure:"matchWithExisting"`
	Encoding           string                      `mapstructure:"encoding"`
	ModifiedCode       []notice.ProjectDescription `mapstructure:"modifiedCode"`
	ProjectHints       []notice.ProjectDescription `mapstructure:"projectHints"`
	HintFiles          []string                    `mapstructure:"hintFiles"`
	Scopes             []string                    `mapstructure:"scopes"`
	Exclude            []string                    `mapstructure:"exclude"`
	Repositories       RepositoriesConfig          `mapstructure:"repositories"`

	// BaseDir is the project directory the run was started for.
	BaseDir string `mapstructure:"-"`
	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// RepositoriesConfig controls where POMs are fetched from
type RepositoriesConfig struct {
	Local   string        `mapstructure:"local"`
	Remote  []string      `mapstructure:"remote"`
	Offline bool          `mapstructure:"offline"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Prefetch is the number of parallel remote POM downloads; 0 or 1 fetches serially.
	Prefetch int `mapstructure:"prefetch"`
}

// ConfigError reports an unusable configuration
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid configuration in %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ConfigFileNames are searched, in order, in the project directory
var ConfigFileNames = []string{
	".noticegen.yaml",
	".noticegen.yml",
	".noticegen.json",
	".noticegen.toml",
}

// FlagKeys maps command-line flag names to configuration keys
var FlagKeys = map[string]string{
	"output":              "noticeOutputPath",
	"notice":              "existingNoticePath",
	"strict":              "strict",
	"match-with-existing": "matchWithExisting",
	"encoding":            "encoding",
	"hint-file":           "hintFiles",
	"scope":               "scopes",
	"exclude":             "exclude",
	"local-repo":          "repositories.local",
	"remote-repo":         "repositories.remote",
	"offline":             "repositories.offline",
	"timeout":             "repositories.timeout",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("noticeOutputPath", "${buildDir}/NOTICE.txt")
	v.SetDefault("existingNoticePath", "${basedir}/NOTICE.txt")
	v.SetDefault("strict", true)
	v.SetDefault("matchWithExisting", true)
	v.SetDefault("encoding", notice.DefaultEncoding)
	v.SetDefault("modifiedCode", []notice.ProjectDescription{})
	v.SetDefault("projectHints", []notice.ProjectDescription{})
	v.SetDefault("hintFiles", []string{})
	v.SetDefault("scopes", maven.DefaultScopes)
	v.SetDefault("exclude", []string{})
	v.SetDefault("repositories.local", "")
	v.SetDefault("repositories.remote", []string{maven.DefaultRemoteURL})
	v.SetDefault("repositories.offline", false)
	v.SetDefault("repositories.timeout", 30*time.Second)
	v.SetDefault("repositories.prefetch", 8)
}

// Load builds the configuration for the project in baseDir. Precedence, from
// lowest to highest: defaults, config file, NOTICEGEN_* environment, flags.
// configFile overrides discovery; flags may be nil.
func Load(baseDir, configFile string, flags *pflag.FlagSet) (*Config, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NOTICEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		configFile = findConfigFile(absBase)
	}
	if configFile != "" {
		if err := ValidateFile(configFile, ConfigSchema); err != nil {
			return nil, &ConfigError{Source: configFile, Err: err}
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, &ConfigError{Source: configFile, Err: err}
		}
	}

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, &ConfigError{Err: err}
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{Source: configFile, Err: fmt.Errorf("error unmarshaling config: %w", err)}
	}
	cfg.BaseDir = absBase
	cfg.File = configFile

	cfg.expandPaths()
	if err := cfg.loadHintFiles(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Source: configFile, Err: err}
	}
	return &cfg, nil
}

func findConfigFile(dir string) string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path
		}
	}
	return ""
}

// BuildDir is the project's build output directory
func (c *Config) BuildDir() string {
	return filepath.Join(c.BaseDir, "target")
}

// expandPaths substitutes ${basedir} and ${buildDir} and anchors relative
// paths at the project directory.
func (c *Config) expandPaths() {
	r := strings.NewReplacer(
		"${basedir}", c.BaseDir,
		"${project.basedir}", c.BaseDir,
		"${buildDir}", c.BuildDir(),
		"${project.build.directory}", c.BuildDir(),
	)
	expand := func(p string) string {
		if p == "" {
			return p
		}
		p = r.Replace(p)
		if strings.HasPrefix(p, "~"+string(filepath.Separator)) || p == "~" {
			if home, err := os.UserHomeDir(); err == nil {
				p = filepath.Join(home, strings.TrimPrefix(p, "~"))
			}
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.BaseDir, p)
		}
		return filepath.Clean(p)
	}

	c.NoticeOutputPath = expand(c.NoticeOutputPath)
	c.ExistingNoticePath = expand(c.ExistingNoticePath)
	for i, f := range c.HintFiles {
		c.HintFiles[i] = expand(f)
	}
	if c.Repositories.Local == "" {
		if def, err := maven.DefaultLocalRepositoryPath(); err == nil {
			c.Repositories.Local = def
		}
	} else {
		c.Repositories.Local = expand(c.Repositories.Local)
	}
}

// Validate checks values the schema cannot express
func (c *Config) Validate() error {
	if _, err := notice.LookupEncoding(c.Encoding); err != nil {
		return err
	}
	if c.NoticeOutputPath == "" {
		return fmt.Errorf("noticeOutputPath must not be empty")
	}
	if c.MatchWithExisting && c.ExistingNoticePath == "" {
		return fmt.Errorf("existingNoticePath must be set when matchWithExisting is enabled")
	}
	if c.Repositories.Timeout < 0 {
		return fmt.Errorf("repositories.timeout must not be negative")
	}
	if c.Repositories.Prefetch < 0 {
		return fmt.Errorf("repositories.prefetch must not be negative")
	}
	if len(c.Scopes) == 0 {
		return fmt.Errorf("at least one dependency scope is required")
	}
	return nil
}

// Hints returns inline hints followed by those loaded from hint files
func (c *Config) Hints() []notice.ProjectDescription {
	return c.ProjectHints
}

// NoticeOptions converts the configuration into pipeline options
func (c *Config) NoticeOptions() notice.Options {
	return notice.Options{
		OutputPath:        c.NoticeOutputPath,
		ExistingPath:      c.ExistingNoticePath,
		MatchWithExisting: c.MatchWithExisting,
		Strict:            c.Strict,
		Encoding:          c.Encoding,
		ModifiedCode:      c.ModifiedCode,
		Hints:             c.Hints(),
		Exclude:           c.Exclude,
	}
}
