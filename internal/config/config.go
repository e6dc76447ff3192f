// Package config provides configuration loading for the inkdeploy CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for a deployment run.
type Config struct {
	Node     NodeConfig     `mapstructure:"node"`
	Artifact ArtifactConfig `mapstructure:"artifact"`
	Deploy   DeployConfig   `mapstructure:"deploy"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Receipt  ReceiptConfig  `mapstructure:"receipt"`
	Log      LogConfig      `mapstructure:"log"`
}

// NodeConfig identifies the target chain session. The endpoint is consumed
// by whatever ChainConnection implementation the driver wires in; the
// bundled simulator ignores it.
type NodeConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	SS58Prefix uint16 `mapstructure:"ss58_prefix"`
}

// ArtifactConfig locates the contract bundle.
type ArtifactConfig struct {
	Path string `mapstructure:"path" validate:"required,file"`
}

// DeployConfig holds per-attempt deployment parameters.
type DeployConfig struct {
	Constructor         string   `mapstructure:"constructor"`
	Args                []string `mapstructure:"args"`
	Endowment           string   `mapstructure:"endowment"`
	GasRefTime          uint64   `mapstructure:"gas_ref_time" validate:"required,gt=0"`
	GasProofSize        uint64   `mapstructure:"gas_proof_size"`
	StorageDepositLimit string   `mapstructure:"storage_deposit_limit"`
	Salt                string   `mapstructure:"salt" validate:"omitempty,hexadecimal"`
	TimeoutSeconds      uint     `mapstructure:"timeout_seconds"`
}

// MetricsConfig controls the optional prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}

// ReceiptConfig controls deployment receipt output.
type ReceiptConfig struct {
	Dir string `mapstructure:"dir"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Load reads configuration from an optional config file and environment
// variables. Environment variables use the INKDEPLOY_ prefix with
// underscores for nesting (INKDEPLOY_NODE_ENDPOINT). The signing seed is
// deliberately NOT part of this config; it is read from its own
// environment variable by the caller and never round-trips through files.
//
// Load does not validate: the caller applies flag overrides first, then
// calls Validate.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can bind it during
	// Unmarshal; viper only considers keys it already knows about.
	v.SetDefault("node.endpoint", "")
	v.SetDefault("node.ss58_prefix", 42)
	v.SetDefault("artifact.path", "")
	v.SetDefault("deploy.constructor", "")
	v.SetDefault("deploy.args", []string{})
	v.SetDefault("deploy.endowment", "")
	v.SetDefault("deploy.storage_deposit_limit", "")
	v.SetDefault("deploy.salt", "")
	v.SetDefault("deploy.gas_ref_time", 500_000_000_000)
	v.SetDefault("deploy.gas_proof_size", 1<<20)
	v.SetDefault("deploy.timeout_seconds", 300)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("receipt.dir", "receipts")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("INKDEPLOY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration against its struct constraints.
func Validate(cfg *Config) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
