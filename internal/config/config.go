// Package config loads the engine configuration from config.yaml and
// BILLING_-prefixed environment variables.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"

	"github.com/Kopoklesz/EmployeeManager/internal/model"
)

type Configuration struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Company  CompanyConfig  `mapstructure:"company"`
	Billing  BillingConfig  `mapstructure:"billing"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Debug   bool   `mapstructure:"debug"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type CompanyConfig struct {
	Name        string `mapstructure:"name"`
	TaxNumber   string `mapstructure:"tax_number"`
	PostalCode  string `mapstructure:"postal_code"`
	City        string `mapstructure:"city"`
	Address     string `mapstructure:"address"`
	Country     string `mapstructure:"country"`
	BankName    string `mapstructure:"bank_name"`
	BankAccount string `mapstructure:"bank_account"`
	Email       string `mapstructure:"email"`
}

type BillingConfig struct {
	// Backend is the configured backend identifier; unknown values fall
	// back to the local XML exporter at selection time.
	Backend          string `mapstructure:"backend"`
	SzamlazzAgentKey string `mapstructure:"szamlazz_agent_key"`
	BillingoAPIKey   string `mapstructure:"billingo_api_key"`
	BillingoBlockID  int    `mapstructure:"billingo_block_id"`

	SequenceKey         string `mapstructure:"sequence_key"`
	SequencePrefix      string `mapstructure:"sequence_prefix"`
	DefaultDeadlineDays int    `mapstructure:"default_deadline_days"`
}

// NewConfig reads config.yaml (optional) and the environment.
func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.debug", false)
	v.SetDefault("database.path", "billing.db")
	v.SetDefault("company.country", "HU")
	v.SetDefault("billing.backend", "local_xml")
	v.SetDefault("billing.sequence_key", "INV")
	v.SetDefault("billing.sequence_prefix", "INV")
	v.SetDefault("billing.default_deadline_days", 8)

	// Register the keys without a natural default so that values set only
	// through the environment survive Unmarshal.
	for _, key := range []string{
		"company.name", "company.tax_number", "company.postal_code",
		"company.city", "company.address", "company.bank_name",
		"company.bank_account", "company.email",
		"billing.szamlazz_agent_key", "billing.billingo_api_key",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("billing.billingo_block_id", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Configuration{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CompanySettings maps the configuration into the domain settings the engine
// components consume.
func (c *Configuration) CompanySettings() *model.CompanySettings {
	return &model.CompanySettings{
		CompanyName: c.Company.Name,
		TaxNumber:   c.Company.TaxNumber,
		PostalCode:  c.Company.PostalCode,
		City:        c.Company.City,
		Address:     c.Company.Address,
		Country:     c.Company.Country,
		BankName:    c.Company.BankName,
		BankAccount: c.Company.BankAccount,
		Email:       c.Company.Email,

		Backend:          c.Billing.Backend,
		SzamlazzAgentKey: c.Billing.SzamlazzAgentKey,
		BillingoAPIKey:   c.Billing.BillingoAPIKey,
		BillingoBlockID:  c.Billing.BillingoBlockID,

		SequenceKey:         c.Billing.SequenceKey,
		SequencePrefix:      c.Billing.SequencePrefix,
		DefaultDeadlineDays: c.Billing.DefaultDeadlineDays,
	}
}
