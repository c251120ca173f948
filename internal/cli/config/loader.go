package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables read as configuration.
// A double underscore separates nested keys: TABLOOK_WATCH__DEBOUNCE.
const EnvPrefix = "TABLOOK_"

// loggerKey is used to store the logger in a context.
type loggerKey struct{}

// configKey is used to store the config in a context.
type configKey struct{}

// flagKeys maps the flags that override configuration to their config keys.
// Other command flags never reach the configuration.
var flagKeys = map[string]string{
	"state":      "state_path",
	"output-dir": "output_dir",
	"output":     "output",
	"format":     "format",
	"verbose":    "verbose",
	"parallel":   "parallel",
	"reuse-runs": "reuse_runs",
	"debounce":   "watch.debounce",
}

// findConfigFile returns the config file to use.
// Priority: explicit path > tablook.yaml > tablook.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"tablook.yaml", "tablook.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from defaults, file, environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	def := Default()
	if err := k.Load(confmap.Provider(map[string]any{
		"output_dir":              def.OutputDir,
		"state_path":              def.StatePath,
		"output":                  def.Output,
		"format":                  def.Format,
		"verbose":                 false,
		"parallel":                false,
		"reuse_runs":              false,
		"watch.debounce":          def.Watch.Debounce.String(),
		"qa.complexity_threshold": def.QA.ComplexityThreshold,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFile := findConfigFile(cfgFile)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !f.Changed || !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
			TagName:          "koanf",
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ConfigFile = configFile
	if configFile != "" && !changed(flags, "state") {
		cfg.StatePath = resolveRelativeTo(cfg.StatePath, filepath.Dir(configFile))
	}
	if configFile != "" && !changed(flags, "output-dir") {
		cfg.OutputDir = resolveRelativeTo(cfg.OutputDir, filepath.Dir(configFile))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func changed(flags *pflag.FlagSet, name string) bool {
	if flags == nil {
		return false
	}
	f := flags.Lookup(name)
	return f != nil && f.Changed
}

// resolveRelativeTo resolves a path relative to baseDir if it is not absolute.
func resolveRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "." {
		return path
	}
	return filepath.Join(baseDir, path)
}

// WithConfig stores cfg in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from a context, or the defaults.
func GetConfig(ctx context.Context) *Config {
	if ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*Config); ok {
			return c
		}
	}
	return Default()
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
