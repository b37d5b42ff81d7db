// Package config holds the policy inputs of the estimator. Tariffs and
// emission factors change yearly by jurisdiction, so they are configuration,
// not literals: defaults, overridden by an optional YAML file, overridden by
// environment variables (a .env file is honored when present).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	ProfilePath    string        `yaml:"profile_path"`
	PVGISBaseURL   string        `yaml:"pvgis_base_url"`
	WeatherTimeout time.Duration `yaml:"weather_timeout"`

	// CanonicalYear is the synthetic year both series are re-stamped onto so
	// they are joinable by time-of-year. Must not be a leap year: the
	// reference load profile carries 365 days.
	CanonicalYear int `yaml:"canonical_year"`
	// TMYStartYear is the first year of the climatology window requested
	// from the weather provider.
	TMYStartYear int `yaml:"tmy_start_year"`

	Tariffs Tariffs `yaml:"tariffs"`
}

// Tariffs are the economic policy constants applied by the economics engine.
type Tariffs struct {
	// SelfConsumptionPrice is the avoided grid price in EUR/kWh.
	SelfConsumptionPrice float64 `yaml:"self_consumption_price_eur_per_kwh"`
	// FeedInTariff is the price paid per surplus kWh exported, in EUR/kWh.
	FeedInTariff float64 `yaml:"feed_in_tariff_eur_per_kwh"`
	// CostPerKWp is the installed system cost per kWp in EUR.
	CostPerKWp float64 `yaml:"cost_per_kwp_eur"`
	// EmissionFactor is the displaced grid mix intensity in kg CO2 per kWh.
	EmissionFactor float64 `yaml:"emission_factor_kg_per_kwh"`
}

// Default returns the built-in policy values (German 2024 figures).
func Default() Config {
	return Config{
		ListenAddr:     ":8080",
		ProfilePath:    "data/GGV_SLP_1000_MWh_2021_01-2020-09-24.csv",
		PVGISBaseURL:   "https://re.jrc.ec.europa.eu/api/v5_2",
		WeatherTimeout: 30 * time.Second,
		CanonicalYear:  2023,
		TMYStartYear:   2006,
		Tariffs: Tariffs{
			SelfConsumptionPrice: 0.30,
			FeedInTariff:         0.0803,
			CostPerKWp:           1500,
			EmissionFactor:       0.380,
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides.
func Load(path string) (Config, error) {
	// .env values only fill in variables not already exported
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "PV_LISTEN_ADDR")
	setString(&c.ProfilePath, "PV_PROFILE_PATH")
	setString(&c.PVGISBaseURL, "PVGIS_BASE_URL")
	setDuration(&c.WeatherTimeout, "PV_WEATHER_TIMEOUT")
	setInt(&c.CanonicalYear, "PV_CANONICAL_YEAR")
	setInt(&c.TMYStartYear, "PV_TMY_START_YEAR")
	setFloat(&c.Tariffs.SelfConsumptionPrice, "PV_SELF_CONSUMPTION_PRICE")
	setFloat(&c.Tariffs.FeedInTariff, "PV_FEED_IN_TARIFF")
	setFloat(&c.Tariffs.CostPerKWp, "PV_COST_PER_KWP")
	setFloat(&c.Tariffs.EmissionFactor, "PV_EMISSION_FACTOR")
}

func (c Config) validate() error {
	if c.Tariffs.SelfConsumptionPrice < 0 || c.Tariffs.FeedInTariff < 0 {
		return fmt.Errorf("tariffs must not be negative")
	}
	if c.Tariffs.CostPerKWp < 0 {
		return fmt.Errorf("cost per kWp must not be negative")
	}
	if c.Tariffs.EmissionFactor < 0 {
		return fmt.Errorf("emission factor must not be negative")
	}
	if c.CanonicalYear%4 == 0 && (c.CanonicalYear%100 != 0 || c.CanonicalYear%400 == 0) {
		return fmt.Errorf("canonical year %d is a leap year; the reference profile covers 365 days", c.CanonicalYear)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
