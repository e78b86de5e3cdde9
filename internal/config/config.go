// Package config defines all configuration structures for the contract
// clause-intelligence platform.  No I/O or parsing logic lives here, only
// plain data types and validation.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer/consumer parameters.
type KafkaConfig struct {
	Brokers           []string `mapstructure:"brokers"`
	GroupID           string   `mapstructure:"group_id"`
	AutoOffsetReset   string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries   int      `mapstructure:"producer_retries"`
	AutoCreateTopics  bool     `mapstructure:"auto_create_topics"`
	ReplicationFactor int      `mapstructure:"replication_factor"`
	NumPartitions     int      `mapstructure:"num_partitions"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	Bucket        string        `mapstructure:"bucket"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// WorkerConfig holds background-worker execution parameters.
type WorkerConfig struct {
	Concurrency    int           `mapstructure:"concurrency"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBackoff   time.Duration `mapstructure:"retry_backoff"`
	HandlerTimeout time.Duration `mapstructure:"handler_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level            string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format           string   `mapstructure:"format"` // "json" | "console"
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// ModelsConfig holds the endpoints and identities of the pretrained scoring
// models.  The encoder and the entailment cross-encoder are served out of
// process; the platform treats them as opaque scoring functions.
type ModelsConfig struct {
	EncoderURL          string        `mapstructure:"encoder_url"`
	EncoderModel        string        `mapstructure:"encoder_model"`
	EntailmentURL       string        `mapstructure:"entailment_url"`
	EntailmentModel     string        `mapstructure:"entailment_model"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	EmbeddingCacheTTL   time.Duration `mapstructure:"embedding_cache_ttl"`
	EmbeddingDimensions int           `mapstructure:"embedding_dimensions"`
}

// ClassifierConfig holds the cascade thresholds and toggles.  Source variants
// of the methodology disagree on exact values, so every threshold is
// configuration rather than a hardcoded constant.
type ClassifierConfig struct {
	// FuzzyThreshold is the lexical-ratio gate for a Standard label, in [0,1].
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold"`

	// PlaceholderThreshold is the lexical-ratio gate applied after placeholder
	// normalization (value substitutions already canonicalised), in [0,1].
	PlaceholderThreshold float64 `mapstructure:"placeholder_threshold"`

	// SemanticThreshold is the embedding-cosine gate for a Standard label.
	SemanticThreshold float64 `mapstructure:"semantic_threshold"`

	// SemanticAmbigLow is the lower bound of the Ambiguous band.  The upper
	// bound is always SemanticThreshold so a score can never be both Standard
	// and Ambiguous.
	SemanticAmbigLow float64 `mapstructure:"semantic_ambig_low"`

	// EntailmentThreshold is the entailment-probability gate for a Standard
	// label, used only when EnableEntailment is set.
	EntailmentThreshold float64 `mapstructure:"entailment_threshold"`

	// EnableEntailment turns the optional entailment gate on.  When off, the
	// dependent cascade steps are skipped entirely, never defaulted.
	EnableEntailment bool `mapstructure:"enable_entailment"`

	// EntailmentFirst runs the entailment gate before the lexical/semantic
	// gates, reproducing the cross-encoder-prioritised methodology variant.
	EntailmentFirst bool `mapstructure:"entailment_first"`

	// MinClauseLength and MaxClauseLength bound usable clause text; shorter
	// clauses are recorded as Skip, longer ones truncated by the segmenter.
	MinClauseLength int `mapstructure:"min_clause_length"`
	MaxClauseLength int `mapstructure:"max_clause_length"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure for the entire platform.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MinIO      MinIOConfig      `mapstructure:"minio"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Log        LogConfig        `mapstructure:"log"`
	Models     ModelsConfig     `mapstructure:"models"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.  It
// returns the first error encountered; callers should treat any error as
// fatal and refuse to start the application.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
	}
	if c.Kafka.GroupID == "" {
		return fmt.Errorf("config: kafka.group_id is required")
	}
	switch c.Kafka.AutoOffsetReset {
	case "earliest", "latest":
	default:
		return fmt.Errorf("config: kafka.auto_offset_reset %q is invalid; expected earliest|latest", c.Kafka.AutoOffsetReset)
	}

	if c.MinIO.Endpoint == "" {
		return fmt.Errorf("config: minio.endpoint is required")
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("config: minio.bucket is required")
	}

	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Models.EncoderURL == "" {
		return fmt.Errorf("config: models.encoder_url is required")
	}
	if c.Classifier.EnableEntailment && c.Models.EntailmentURL == "" {
		return fmt.Errorf("config: models.entailment_url is required when classifier.enable_entailment is set")
	}

	return c.Classifier.Validate()
}

// Validate checks the cascade threshold bands.  Ranges mirror the published
// methodology: all similarity gates live in [0,1] and the Ambiguous band
// sits strictly below the Standard semantic gate.
func (c *ClassifierConfig) Validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: classifier.%s %v is out of range [0, 1]", name, v)
		}
		return nil
	}
	if err := inUnit("fuzzy_threshold", c.FuzzyThreshold); err != nil {
		return err
	}
	if err := inUnit("placeholder_threshold", c.PlaceholderThreshold); err != nil {
		return err
	}
	if err := inUnit("semantic_threshold", c.SemanticThreshold); err != nil {
		return err
	}
	if err := inUnit("semantic_ambig_low", c.SemanticAmbigLow); err != nil {
		return err
	}
	if err := inUnit("entailment_threshold", c.EntailmentThreshold); err != nil {
		return err
	}
	if c.SemanticAmbigLow >= c.SemanticThreshold {
		return fmt.Errorf("config: classifier.semantic_ambig_low %v must be below semantic_threshold %v",
			c.SemanticAmbigLow, c.SemanticThreshold)
	}
	if c.MinClauseLength < 1 {
		return fmt.Errorf("config: classifier.min_clause_length must be >= 1, got %d", c.MinClauseLength)
	}
	if c.MaxClauseLength <= c.MinClauseLength {
		return fmt.Errorf("config: classifier.max_clause_length %d must exceed min_clause_length %d",
			c.MaxClauseLength, c.MinClauseLength)
	}
	return nil
}
