// Package config holds the run settings, unmarshalled from viper
// (flags, TRANSCRIPTCODER_* environment and ~/.transcriptcoder.yaml).
package config

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Log levels accepted by LogLevel.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Config is the settings of a single run.
type Config struct {
	// reference annotation with known start and stop codons
	Reference string `mapstructure:"reference" yaml:"reference"`
	// target annotation to infer codons for
	Target string `mapstructure:"target" yaml:"target"`
	// genetic code table file; the standard code when empty
	TranslationTable string `mapstructure:"translation_table" yaml:"translation_table"`
	// directory of per-chromosome FASTA files, or one multi-record FASTA
	Genome string `mapstructure:"genome" yaml:"genome"`
	// label written in protein FASTA headers
	DatabaseName string `mapstructure:"database_name" yaml:"database_name"`

	Output    string `mapstructure:"output" yaml:"output"`
	GFF       string `mapstructure:"gff" yaml:"gff"`
	Accession string `mapstructure:"accession" yaml:"accession"`

	LogFile  string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// transcript workers per chromosome, 0 for one per CPU
	Workers int `mapstructure:"workers" yaml:"workers"`
	// chromosomes processed concurrently
	ChromosomeJobs int `mapstructure:"chromosome_jobs" yaml:"chromosome_jobs"`

	// restricts the run to one chromosome when set
	Chromosome string `mapstructure:"chromosome" yaml:"chromosome"`

	ResultsDB string `mapstructure:"results_db" yaml:"results_db"`
	CacheDir  string `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// NewDefaultConfig returns a Config with default values for the optional settings.
func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:       LevelInfo,
		ChromosomeJobs: 1,
	}
}

// SetDefaults registers the defaults on a viper instance.
func SetDefaults(v *viper.Viper) {
	d := NewDefaultConfig()
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("chromosome_jobs", d.ChromosomeJobs)
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	c := NewDefaultConfig()
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// Validate checks required paths and value ranges.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Reference, validation.Required),
		validation.Field(&c.Target, validation.Required),
		validation.Field(&c.Genome, validation.Required),
		validation.Field(&c.DatabaseName, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.LogLevel, validation.Required, validation.In(LevelDebug, LevelInfo, LevelWarn, LevelError)),
		validation.Field(&c.Workers, validation.Min(0)),
		validation.Field(&c.ChromosomeJobs, validation.Required, validation.Min(1)),
	)
}

// ZapLevel returns LogLevel as a zap level.
func (c *Config) ZapLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// EffectiveWorkers resolves Workers, mapping 0 to the CPU count.
func (c *Config) EffectiveWorkers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Keys returns the config keys in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		keys = append(keys, t.Field(i).Tag.Get("mapstructure"))
	}
	return keys
}

func field(key string) (reflect.StructField, bool) {
	t := reflect.TypeOf(Config{})
	for i := range t.NumField() {
		if f := t.Field(i); f.Tag.Get("mapstructure") == key {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// IsKey reports whether key names a Config setting.
func IsKey(key string) bool {
	_, ok := field(key)
	return ok
}

// ParseValue converts a textual value for key to the type Config stores,
// checking the key exists and the value is in range.
func ParseValue(key, value string) (any, error) {
	f, ok := field(key)
	if !ok {
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}

	var v any = value
	if f.Type.Kind() == reflect.Int {
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", key, value)
		}
		v = n
	}

	var rule validation.Rule
	switch key {
	case "log_level":
		rule = validation.In(LevelDebug, LevelInfo, LevelWarn, LevelError)
	case "workers":
		rule = validation.Min(0)
	case "chromosome_jobs":
		rule = validation.Min(1)
	}
	if rule != nil {
		if err := validation.Validate(v, rule); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return v, nil
}
