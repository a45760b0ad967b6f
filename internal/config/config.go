package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"semerg/internal/entsoe"
	"semerg/internal/fingrid"
	"semerg/internal/tariff"
)

// EntsoeConfig holds the transparency platform settings.
type EntsoeConfig struct {
	SecurityToken string `mapstructure:"security-token"`
	BaseURL       string `mapstructure:"base-url"`
	// Area is the bidding zone EIC code, used as both in and out domain
	Area string `mapstructure:"area"`
}

// FingridConfig holds the open data API settings.
type FingridConfig struct {
	AuthenticationToken string `mapstructure:"authentication-token"`
	BaseURL             string `mapstructure:"base-url"`
}

type HTTPConfig struct {
	// Timeout per request, zero keeps the client default
	Timeout time.Duration `mapstructure:"timeout"`
}

type LoggingConfig struct {
	// Min log level: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	Level *string `mapstructure:"level"`
}

// TariffConfig holds the consumer price components in c/kWh.
type TariffConfig struct {
	VAT               float64 `mapstructure:"vat"`
	Margin            float64 `mapstructure:"margin"`
	ElectricityTax    float64 `mapstructure:"electricity-tax"`
	SupplySecurityFee float64 `mapstructure:"supply-security-fee"`
	TransmissionDay   float64 `mapstructure:"transmission-day"`
	TransmissionNight float64 `mapstructure:"transmission-night"`
	DayStartHour      int     `mapstructure:"day-start-hour"`
	DayEndHour        int     `mapstructure:"day-end-hour"`
}

// Config holds all configuration for the fetcher.
type Config struct {
	Entsoe  EntsoeConfig  `mapstructure:"entsoe"`
	Fingrid FingridConfig `mapstructure:"fingrid"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Tariff  TariffConfig  `mapstructure:"tariff"`
}

// DefaultPath returns ~/.semerg/config.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".semerg", "config"), nil
}

// Load reads the TOML configuration file at path. An empty path selects
// DefaultPath. Environment variables take precedence over file values.
//
// Expected file layout:
//
//	[entsoe]
//	security-token = "..."
//
//	[fingrid]
//	authentication-token = "..."
//
// Environment overrides use the SEMERG_ prefix, e.g.
// SEMERG_ENTSOE_SECURITY_TOKEN or SEMERG_FINGRID_BASE_URL.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetEnvPrefix("semerg")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// Keys without defaults are only seen by AutomaticEnv when bound
	v.BindEnv("entsoe.security-token")
	v.BindEnv("fingrid.authentication-token")
	v.BindEnv("logging.level")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required fields
	var missing []string
	if config.Entsoe.SecurityToken == "" {
		missing = append(missing, "entsoe.security-token")
	}
	if config.Fingrid.AuthenticationToken == "" {
		missing = append(missing, "fingrid.authentication-token")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("entsoe.base-url", entsoe.DefaultBaseURL)
	v.SetDefault("entsoe.area", entsoe.DefaultArea)
	v.SetDefault("fingrid.base-url", fingrid.DefaultBaseURL)
	v.SetDefault("http.timeout", "0s")

	t := tariff.Default()
	v.SetDefault("tariff.vat", t.VAT)
	v.SetDefault("tariff.margin", t.Margin)
	v.SetDefault("tariff.electricity-tax", t.ElectricityTax)
	v.SetDefault("tariff.supply-security-fee", t.SupplySecurityFee)
	v.SetDefault("tariff.transmission-day", t.TransmissionDay)
	v.SetDefault("tariff.transmission-night", t.TransmissionNight)
	v.SetDefault("tariff.day-start-hour", t.DayStartHour)
	v.SetDefault("tariff.day-end-hour", t.DayEndHour)
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
