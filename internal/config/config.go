package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appDir                 = "augmented"
	defaultTempAdminBlocks = 10
)

type GlobalFlags struct {
	ConfigPath     string
	JSON           bool
	Plain          bool
	Select         string
	ResultsOnly    bool
	EnableCommands string
	Timeout        string
	Network        string
	RPCURL         string
	LogLevel       string
	KeySource      string
	NoJournal      bool
}

type Settings struct {
	OutputMode     string
	SelectFields   []string
	ResultsOnly    bool
	EnableCommands []string
	Timeout        time.Duration
	LogLevel       string

	Network    string
	RPCURL     string
	Controller string
	KeySource  string
	// TempAdminBlocks is the lifetime of a compatible-mode temporary admin grant.
	TempAdminBlocks uint64
	// ProviderRegistries are per-network fallbacks for REGISTRY when no
	// deployment record exists.
	ProviderRegistries map[string]string

	DeploymentsPath     string
	DeploymentsLockPath string
	JournalEnabled      bool
	JournalPath         string
	JournalLockPath     string
}

type fileConfig struct {
	Output          string  `yaml:"output"`
	Timeout         string  `yaml:"timeout"`
	LogLevel        string  `yaml:"log_level"`
	Network         string  `yaml:"network"`
	RPCURL          string  `yaml:"rpc_url"`
	Controller      string  `yaml:"controller"`
	KeySource       string  `yaml:"key_source"`
	TempAdminBlocks *uint64 `yaml:"temp_admin_blocks"`
	Pool            struct {
		ProviderRegistry map[string]string `yaml:"provider_registry"`
	} `yaml:"pool"`
	Deployments struct {
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"deployments"`
	Journal struct {
		Enabled  *bool  `yaml:"enabled"`
		Path     string `yaml:"path"`
		LockPath string `yaml:"lock_path"`
	} `yaml:"journal"`
}

func Load(flags GlobalFlags) (Settings, error) {
	settings, err := defaultSettings()
	if err != nil {
		return Settings{}, err
	}

	cfgPath, err := resolveConfigPath(flags.ConfigPath)
	if err != nil {
		return Settings{}, err
	}

	if err := applyFileConfig(cfgPath, &settings); err != nil {
		return Settings{}, err
	}

	applyEnv(&settings)

	if err := applyFlags(flags, &settings); err != nil {
		return Settings{}, err
	}

	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 5 * time.Minute
	}
	if settings.TempAdminBlocks == 0 {
		settings.TempAdminBlocks = defaultTempAdminBlocks
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	return settings, nil
}

// ProviderRegistry returns the configured registry fallback for network.
func (s Settings) ProviderRegistry(network string) string {
	return s.ProviderRegistries[strings.ToLower(strings.TrimSpace(network))]
}

func defaultSettings() (Settings, error) {
	dir, err := defaultCacheDir()
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		OutputMode:          "json",
		Timeout:             5 * time.Minute,
		LogLevel:            "info",
		Network:             "localhost",
		KeySource:           "auto",
		TempAdminBlocks:     defaultTempAdminBlocks,
		ProviderRegistries:  map[string]string{},
		DeploymentsPath:     filepath.Join(dir, "deployments.db"),
		DeploymentsLockPath: filepath.Join(dir, "deployments.lock"),
		JournalEnabled:      true,
		JournalPath:         filepath.Join(dir, "journal.db"),
		JournalLockPath:     filepath.Join(dir, "journal.lock"),
	}, nil
}

func resolveConfigPath(input string) (string, error) {
	if strings.TrimSpace(input) != "" {
		return input, nil
	}
	if v := os.Getenv("AUGMENTED_CONFIG"); v != "" {
		return v, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, appDir, "config.yaml"), nil
}

func defaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, appDir), nil
}

func applyFileConfig(path string, settings *Settings) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}

	if cfg.Output != "" {
		settings.OutputMode = strings.ToLower(cfg.Output)
	}
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return fmt.Errorf("config timeout: %w", err)
		}
		settings.Timeout = d
	}
	if cfg.LogLevel != "" {
		settings.LogLevel = strings.ToLower(cfg.LogLevel)
	}
	if cfg.Network != "" {
		settings.Network = cfg.Network
	}
	if cfg.RPCURL != "" {
		settings.RPCURL = cfg.RPCURL
	}
	if cfg.Controller != "" {
		settings.Controller = cfg.Controller
	}
	if cfg.KeySource != "" {
		settings.KeySource = cfg.KeySource
	}
	if cfg.TempAdminBlocks != nil {
		settings.TempAdminBlocks = *cfg.TempAdminBlocks
	}
	for network, addr := range cfg.Pool.ProviderRegistry {
		settings.ProviderRegistries[strings.ToLower(network)] = addr
	}
	if cfg.Deployments.Path != "" {
		settings.DeploymentsPath = cfg.Deployments.Path
	}
	if cfg.Deployments.LockPath != "" {
		settings.DeploymentsLockPath = cfg.Deployments.LockPath
	}
	if cfg.Journal.Enabled != nil {
		settings.JournalEnabled = *cfg.Journal.Enabled
	}
	if cfg.Journal.Path != "" {
		settings.JournalPath = cfg.Journal.Path
	}
	if cfg.Journal.LockPath != "" {
		settings.JournalLockPath = cfg.Journal.LockPath
	}
	return nil
}

func applyEnv(settings *Settings) {
	if v := os.Getenv("AUGMENTED_OUTPUT"); v != "" {
		settings.OutputMode = strings.ToLower(v)
	}
	if v := os.Getenv("AUGMENTED_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			settings.Timeout = d
		}
	}
	if v := os.Getenv("AUGMENTED_LOG_LEVEL"); v != "" {
		settings.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("AUGMENTED_NETWORK"); v != "" {
		settings.Network = v
	}
	if v := os.Getenv("AUGMENTED_RPC_URL"); v != "" {
		settings.RPCURL = v
	}
	if v := os.Getenv("AUGMENTED_CONTROLLER"); v != "" {
		settings.Controller = v
	}
	if v := os.Getenv("AUGMENTED_KEY_SOURCE"); v != "" {
		settings.KeySource = v
	}
	if v := os.Getenv("AUGMENTED_TEMP_ADMIN_BLOCKS"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			settings.TempAdminBlocks = n
		}
	}
	if v := os.Getenv("AUGMENTED_DEPLOYMENTS_PATH"); v != "" {
		settings.DeploymentsPath = v
	}
	if v := os.Getenv("AUGMENTED_DEPLOYMENTS_LOCK_PATH"); v != "" {
		settings.DeploymentsLockPath = v
	}
	if v := os.Getenv("AUGMENTED_NO_JOURNAL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			settings.JournalEnabled = !b
		}
	}
	if v := os.Getenv("AUGMENTED_JOURNAL_PATH"); v != "" {
		settings.JournalPath = v
	}
	if v := os.Getenv("AUGMENTED_JOURNAL_LOCK_PATH"); v != "" {
		settings.JournalLockPath = v
	}
}

func applyFlags(flags GlobalFlags, settings *Settings) error {
	if flags.JSON && flags.Plain {
		return fmt.Errorf("cannot use --json and --plain together")
	}
	if flags.JSON {
		settings.OutputMode = "json"
	}
	if flags.Plain {
		settings.OutputMode = "plain"
	}
	if fields := splitList(flags.Select); len(fields) > 0 {
		settings.SelectFields = fields
	}
	settings.ResultsOnly = flags.ResultsOnly
	if allowed := splitList(flags.EnableCommands); len(allowed) > 0 {
		settings.EnableCommands = allowed
	}

	if flags.Timeout != "" {
		d, err := time.ParseDuration(flags.Timeout)
		if err != nil {
			return fmt.Errorf("parse --timeout: %w", err)
		}
		settings.Timeout = d
	}
	if flags.LogLevel != "" {
		settings.LogLevel = strings.ToLower(flags.LogLevel)
	}
	if flags.Network != "" {
		settings.Network = flags.Network
	}
	if flags.RPCURL != "" {
		settings.RPCURL = flags.RPCURL
	}
	if flags.KeySource != "" {
		settings.KeySource = flags.KeySource
	}
	if flags.NoJournal {
		settings.JournalEnabled = false
	}

	if settings.OutputMode != "json" && settings.OutputMode != "plain" {
		return fmt.Errorf("output must be json or plain")
	}
	return nil
}

func splitList(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
