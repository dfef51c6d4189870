// internal/common/config/config.go
package config

import (
	"fmt"

	"decree-workers/internal/models"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Storage       StorageConfig           `mapstructure:"storage"`
	Decree        DecreeConfig            `mapstructure:"decree"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// ElasticsearchConfig is optional; an empty address list disables decree indexing.
type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// Enabled reports whether any address is configured.
func (e ElasticsearchConfig) Enabled() bool { return len(e.Addresses) > 0 }

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// StorageConfig locates template assets and generated archives.
type StorageConfig struct {
	TemplateDir string   `mapstructure:"template_dir"`
	S3          S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Enabled        bool   `mapstructure:"enabled"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	TemplatePrefix string `mapstructure:"template_prefix"`
	ArchivePrefix  string `mapstructure:"archive_prefix"`
}

// DecreeConfig carries the default batch settings and rendering knobs.
type DecreeConfig struct {
	NumberFormat  string `mapstructure:"number_format"`
	StartSequence int    `mapstructure:"start_sequence"`
	IssuePlace    string `mapstructure:"issue_place"`
	ChairName     string `mapstructure:"chair_name"`
	SecretaryName string `mapstructure:"secretary_name"`
	DefaultUnit   string `mapstructure:"default_unit"`
	VerifyBaseURL string `mapstructure:"verify_base_url"`

	QRSize       int               `mapstructure:"qr_size"`
	QRImagePart  string            `mapstructure:"qr_image_part"`
	CounterKey   string            `mapstructure:"counter_key"`
	RegistryPath string            `mapstructure:"registry_path"`
	Templates    map[string]string `mapstructure:"templates"` // category -> template id
}

// Settings returns the configured defaults as batch settings.
func (d DecreeConfig) Settings() models.Settings {
	return models.Settings{
		NumberFormat:  d.NumberFormat,
		StartSequence: d.StartSequence,
		IssuePlace:    d.IssuePlace,
		ChairName:     d.ChairName,
		SecretaryName: d.SecretaryName,
		DefaultUnit:   d.DefaultUnit,
		VerifyBaseURL: d.VerifyBaseURL,
	}
}

// NotificationConfig holds settings for batch summary delivery.
type NotificationConfig struct {
	Region string `mapstructure:"region"`
	SNS    struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled   bool     `mapstructure:"enabled"`
		FromEmail string   `mapstructure:"from_email"`
		ToEmails  []string `mapstructure:"to_emails"`
	} `mapstructure:"ses"`
}

type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
