package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"

	"github.com/gametrade/zkescrow/modules/attestation"
	escrowtypes "github.com/gametrade/zkescrow/modules/escrow/types"
)

// Config is the daemon configuration, read from flags, environment
// (ZKESCROWD_*) and an optional config file.
type Config struct {
	ListenAddr   string `mapstructure:"listen-addr"`
	LogLevel     string `mapstructure:"log-level"`
	LogFormat    string `mapstructure:"log-format"`
	Notary       string `mapstructure:"notary"`
	OriginName   string `mapstructure:"origin-name"`
	Authority    string `mapstructure:"authority"`
	Resolver     string `mapstructure:"resolver"`
	StakePercent uint32 `mapstructure:"stake-percent"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen-addr", ":8547")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "plain")
	v.SetDefault("origin-name", attestation.DefaultOriginName)
	v.SetDefault("stake-percent", escrowtypes.DefaultStakePercent)
}

func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for name, addr := range map[string]string{
		"notary":    cfg.Notary,
		"authority": cfg.Authority,
		"resolver":  cfg.Resolver,
	} {
		if !common.IsHexAddress(addr) {
			return Config{}, fmt.Errorf("config %s: %q is not a hex address", name, addr)
		}
	}

	if cfg.StakePercent > escrowtypes.MaxStakePercent {
		return Config{}, fmt.Errorf("config stake-percent: %d exceeds %d", cfg.StakePercent, escrowtypes.MaxStakePercent)
	}

	return cfg, nil
}
