package config

import (
	"errors"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Account configures one importer: the ledger account the statement
// belongs to plus its classification and skip-policy settings.
type Account struct {
	Name                   string   `mapstructure:"name"`
	Currency               string   `mapstructure:"currency"`
	RulesFile              string   `mapstructure:"rules_file"`
	DefaultAccount         string   `mapstructure:"default_account"`
	DefaultSplitPercentage *float64 `mapstructure:"default_split_percentage"`
	SharedAccount          string   `mapstructure:"shared_account"`
	SkipBalanceForward     *bool    `mapstructure:"skip_balance_forward"`
	SkipPayments           bool     `mapstructure:"skip_payments"`
}

// ShouldSkipBalanceForward defaults to true when the config file leaves the
// flag unset.
func (a *Account) ShouldSkipBalanceForward() bool {
	if a.SkipBalanceForward == nil {
		return true
	}
	return *a.SkipBalanceForward
}

type Config struct {
	Output   string    `mapstructure:"output"`
	Accounts []Account `mapstructure:"accounts"`
}

// ActiveAccounts returns the configured accounts, falling back to a single
// stock DNB Mastercard account when the config file defines none.
func (c *Config) ActiveAccounts() []Account {
	if len(c.Accounts) == 0 {
		return []Account{{Name: "Liabilities:CreditCard:DNB", Currency: "NOK"}}
	}
	return c.Accounts
}

// Build assembles the configuration from an optional YAML config file,
// bound command-line flags and DNBIMPORT_* environment variables. Flags
// win over env, env over file.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DNBIMPORT")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
