package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/Veraticus/sharebook/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. SHAREBOOK_AUTH_USER.
const EnvPrefix = "SHAREBOOK"

// Configuration keys.
const (
	KeyDatabasePath   = "database.path"
	KeyAuthUser       = "auth.user"
	KeyCurrency       = "currency"
	KeyReportTimezone = "report.timezone"
	KeyImportRules    = "import.rules"
	KeyLogLevel       = "logging.level"
	KeyLogFormat      = "logging.format"
)

// DefaultCurrency is the ISO code money is shown in.
const DefaultCurrency = "IQD"

// Config is the resolved application configuration.
type Config struct {
	Location     *time.Location
	DatabasePath string
	User         string
	Currency     string
	ImportRules  string
	LogLevel     string
	LogFormat    string
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath())
	v.SetDefault(KeyCurrency, DefaultCurrency)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{KeyAuthUser, KeyReportTimezone, KeyImportRules} {
		_ = v.BindEnv(key)
	}
}

// LoadEnvFile loads environment variables from a .env file. An empty path loads
// ./.env when it exists; an explicit path must exist. Variables already set in
// the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}

	if err := godotenv.Load(ExpandPath(path)); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load resolves and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DatabasePath: ExpandPath(v.GetString(KeyDatabasePath)),
		User:         strings.TrimSpace(v.GetString(KeyAuthUser)),
		Currency:     strings.ToUpper(strings.TrimSpace(v.GetString(KeyCurrency))),
		ImportRules:  ExpandPath(v.GetString(KeyImportRules)),
		LogLevel:     v.GetString(KeyLogLevel),
		LogFormat:    v.GetString(KeyLogFormat),
		Location:     time.Local,
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("%w: %s", common.ErrMissingConfig, KeyDatabasePath)
	}

	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if money.GetCurrency(cfg.Currency) == nil {
		return nil, fmt.Errorf("%w: unknown currency %q", common.ErrInvalidConfig, cfg.Currency)
	}

	if tz := strings.TrimSpace(v.GetString(KeyReportTimezone)); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("%w: report timezone %q: %v", common.ErrInvalidConfig, tz, err)
		}
		cfg.Location = loc
	}

	if _, err := common.ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}
