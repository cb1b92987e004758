package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/spf13/viper"

	"github.com/paw-chain/stableswap/app/telemetry"
	"github.com/paw-chain/stableswap/x/stableswap/types"
)

const (
	// EnvPrefix is the prefix of every environment override, e.g. STABLESWAP_LOG_LEVEL.
	EnvPrefix = "STABLESWAP"

	defaultDBName      = "stableswap"
	defaultMetricsPort = 36660
)

// DefaultNodeHome is the default home directory of the daemon.
var DefaultNodeHome = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stableswap"
	}
	return filepath.Join(home, ".stableswap")
}()

// Config is the host configuration.
type Config struct {
	Home        string
	DBBackend   string
	DBName      string
	LogLevel    string
	LogJSON     bool
	MetricsPort int
	Params      types.Params
	Telemetry   telemetry.Config
}

func setDefaults(v *viper.Viper) {
	p := types.DefaultParams()

	v.SetDefault("home", DefaultNodeHome)
	v.SetDefault("db.backend", "goleveldb")
	v.SetDefault("db.name", defaultDBName)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("metrics.port", defaultMetricsPort)

	v.SetDefault("params.amplification", p.Amplification)
	v.SetDefault("params.min_weight", p.Limits.Min.String())
	v.SetDefault("params.max_weight", p.Limits.Max.String())
	v.SetDefault("params.soft_min_weight", p.Penalty.SoftMin.String())
	v.SetDefault("params.soft_max_weight", p.Penalty.SoftMax.String())
	v.SetDefault("params.max_penalty", p.Penalty.MaxPenalty.String())
	v.SetDefault("params.swap_fee", p.SwapFee.String())
	v.SetDefault("params.redemption_fee", p.RedemptionFee.String())
	v.SetDefault("params.gov_fee", p.GovFee.String())
	v.SetDefault("params.invariant_tolerance", p.InvariantTolerance.String())
	v.SetDefault("params.max_assets", p.MaxAssets)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4318")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.environment", "local")
	v.SetDefault("telemetry.prometheus_enabled", false)
}

// LoadConfig reads the configuration file at path, when given, and applies environment
// overrides. Every key can be overridden as STABLESWAP_<SECTION>_<KEY>.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	return configFromViper(v)
}

func configFromViper(v *viper.Viper) (Config, error) {
	params, err := paramsFromViper(v)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Home:        v.GetString("home"),
		DBBackend:   v.GetString("db.backend"),
		DBName:      v.GetString("db.name"),
		LogLevel:    v.GetString("log.level"),
		LogJSON:     v.GetBool("log.json"),
		MetricsPort: v.GetInt("metrics.port"),
		Params:      params,
		Telemetry: telemetry.Config{
			Enabled:           v.GetBool("telemetry.enabled"),
			OTLPEndpoint:      v.GetString("telemetry.otlp_endpoint"),
			SampleRate:        v.GetFloat64("telemetry.sample_rate"),
			Environment:       v.GetString("telemetry.environment"),
			PrometheusEnabled: v.GetBool("telemetry.prometheus_enabled"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func paramsFromViper(v *viper.Viper) (types.Params, error) {
	uints := map[string]*sdkmath.Uint{}
	var p types.Params
	uints["params.min_weight"] = &p.Limits.Min
	uints["params.max_weight"] = &p.Limits.Max
	uints["params.soft_min_weight"] = &p.Penalty.SoftMin
	uints["params.soft_max_weight"] = &p.Penalty.SoftMax
	uints["params.max_penalty"] = &p.Penalty.MaxPenalty
	uints["params.swap_fee"] = &p.SwapFee
	uints["params.redemption_fee"] = &p.RedemptionFee
	uints["params.gov_fee"] = &p.GovFee
	uints["params.invariant_tolerance"] = &p.InvariantTolerance

	for key, dst := range uints {
		u, err := sdkmath.ParseUint(v.GetString(key))
		if err != nil {
			return types.Params{}, types.ErrInvalidParams.Wrapf("%s: %s", key, err)
		}
		*dst = u
	}
	p.Amplification = v.GetUint64("params.amplification")
	p.MaxAssets = v.GetUint32("params.max_assets")
	return p, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch c.DBBackend {
	case "goleveldb", "memdb":
	default:
		return fmt.Errorf("unsupported db backend %q", c.DBBackend)
	}
	if c.DBName == "" {
		return fmt.Errorf("db name is required")
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

// DataDir returns the directory holding the pool database.
func (c Config) DataDir() string {
	return filepath.Join(c.Home, "data")
}
