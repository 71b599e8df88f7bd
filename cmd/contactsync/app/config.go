package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/contactsync/internal/sources/airtable"
	"github.com/agentstation/contactsync/internal/sources/mailchimp"
	"github.com/agentstation/contactsync/internal/sources/surveys"
	"github.com/agentstation/contactsync/pkg/authority"
	"github.com/agentstation/contactsync/pkg/constants"
	"github.com/agentstation/contactsync/pkg/errors"
)

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	DryRun  bool

	// Config file
	ConfigFile string

	// Records Store
	AirtableAPIKey  string
	AirtableBaseID  string
	AirtableTable   string
	AirtableColumns map[string]string

	// List Service
	MailchimpAPIKey string
	MailchimpListID string

	// Survey store
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SurveyTable        string

	// Reconciliation
	MinSnapshotSize int
	Authority       []authority.Field // Empty keeps the default precedence policy

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (path, or ~/.contactsync.yaml)
// 5. Defaults
func LoadConfig(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+path, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".contactsync")
		// A missing default config file is fine.
		_ = v.ReadInConfig()
	}

	config := &Config{
		ConfigFile: v.ConfigFileUsed(),

		AirtableAPIKey:  v.GetString("airtable.api_key"),
		AirtableBaseID:  v.GetString("airtable.base_id"),
		AirtableTable:   v.GetString("airtable.table"),
		AirtableColumns: v.GetStringMapString("airtable.columns"),

		MailchimpAPIKey: v.GetString("mailchimp.api_key"),
		MailchimpListID: v.GetString("mailchimp.list_id"),

		AWSAccessKeyID:     v.GetString("aws.access_key_id"),
		AWSSecretAccessKey: v.GetString("aws.access_secret"),
		AWSRegion:          v.GetString("aws.region"),
		SurveyTable:        v.GetString("surveys.table"),

		MinSnapshotSize: v.GetInt("min_snapshot_size"),
		DryRun:          v.GetBool("dry_run"),

		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		LogOutput: v.GetString("log.output"),
	}

	if config.MinSnapshotSize < 0 {
		return nil, errors.NewValidationError("MIN_SNAPSHOT_SIZE", config.MinSnapshotSize, "must be non-negative")
	}

	if err := v.UnmarshalKey("authority", &config.Authority); err != nil {
		return nil, errors.NewConfigError("authority", "failed to decode field rules", err)
	}
	if err := authority.Validate(config.Authority); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("airtable.base_id", constants.DefaultAirtableBaseID)
	v.SetDefault("airtable.table", constants.DefaultAirtableTable)
	v.SetDefault("mailchimp.list_id", constants.DefaultMailchimpListID)
	v.SetDefault("aws.region", constants.DefaultAWSRegion)
	v.SetDefault("surveys.table", constants.DefaultSurveyTable)
	v.SetDefault("min_snapshot_size", constants.DefaultMinSnapshotSize)
	v.SetDefault("log.format", "auto")
	v.SetDefault("log.output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// Flag values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, dryRun bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	if dryRun {
		c.DryRun = true
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// AirtableConfig returns the Records Store client configuration.
func (c *Config) AirtableConfig() (airtable.Config, error) {
	columns, err := airtable.DefaultColumns().WithOverrides(c.AirtableColumns)
	if err != nil {
		return airtable.Config{}, err
	}
	cfg := airtable.Config{
		APIKey:  c.AirtableAPIKey,
		BaseID:  c.AirtableBaseID,
		Table:   c.AirtableTable,
		Columns: columns,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// MailchimpConfig returns the List Service client configuration.
func (c *Config) MailchimpConfig() (mailchimp.Config, error) {
	cfg := mailchimp.Config{
		APIKey: c.MailchimpAPIKey,
		ListID: c.MailchimpListID,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SurveyConfig returns the survey store configuration.
func (c *Config) SurveyConfig() (surveys.Config, error) {
	cfg := surveys.Config{
		Region:          c.AWSRegion,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretAccessKey,
		Table:           c.SurveyTable,
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadEnvFiles loads environment variables from .env files.
// godotenv never overrides variables that are already set, so .env.local is
// loaded first to take precedence over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
