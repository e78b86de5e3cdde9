package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default values
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills every unset field of c with its default value.  Called
// by the loader after unmarshalling and before validation so that a minimal
// configuration file (or none at all) still yields a runnable system.
func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.MaxBodySize == 0 {
		c.Server.MaxBodySize = 32 << 20 // 32 MiB, enough for any contract PDF
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}

	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.User == "" {
		c.Database.User = "hilabs"
	}
	if c.Database.DBName == "" {
		c.Database.DBName = "hilabs"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 16
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = time.Hour
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 30 * time.Minute
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = "migrations"
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}
	if c.Redis.DefaultTTL == 0 {
		c.Redis.DefaultTTL = time.Hour
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "hilabs"
	}

	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "hilabs-classification"
	}
	if c.Kafka.AutoOffsetReset == "" {
		c.Kafka.AutoOffsetReset = "earliest"
	}
	if c.Kafka.ProducerRetries == 0 {
		c.Kafka.ProducerRetries = 3
	}
	if c.Kafka.ReplicationFactor == 0 {
		c.Kafka.ReplicationFactor = 1
	}
	if c.Kafka.NumPartitions == 0 {
		c.Kafka.NumPartitions = 3
	}

	if c.MinIO.Endpoint == "" {
		c.MinIO.Endpoint = "localhost:9000"
	}
	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = "contracts"
	}
	if c.MinIO.PresignExpiry == 0 {
		c.MinIO.PresignExpiry = 15 * time.Minute
	}

	if c.Worker.Concurrency == 0 {
		c.Worker.Concurrency = 4
	}
	if c.Worker.MaxRetries == 0 {
		c.Worker.MaxRetries = 3
	}
	if c.Worker.RetryBackoff == 0 {
		c.Worker.RetryBackoff = 2 * time.Second
	}
	if c.Worker.HandlerTimeout == 0 {
		c.Worker.HandlerTimeout = 5 * time.Minute
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stdout"}
	}
	if len(c.Log.ErrorOutputPaths) == 0 {
		c.Log.ErrorOutputPaths = []string{"stderr"}
	}

	if c.Models.EncoderURL == "" {
		c.Models.EncoderURL = "http://localhost:8501"
	}
	if c.Models.EncoderModel == "" {
		c.Models.EncoderModel = "all-MiniLM-L6-v2"
	}
	if c.Models.EntailmentURL == "" {
		c.Models.EntailmentURL = "http://localhost:8502"
	}
	if c.Models.EntailmentModel == "" {
		c.Models.EntailmentModel = "nli-deberta-v3-base"
	}
	if c.Models.RequestTimeout == 0 {
		c.Models.RequestTimeout = 30 * time.Second
	}
	if c.Models.EmbeddingCacheTTL == 0 {
		c.Models.EmbeddingCacheTTL = 24 * time.Hour
	}
	if c.Models.EmbeddingDimensions == 0 {
		c.Models.EmbeddingDimensions = 384
	}

	if c.Classifier.FuzzyThreshold == 0 {
		c.Classifier.FuzzyThreshold = 0.70
	}
	if c.Classifier.PlaceholderThreshold == 0 {
		c.Classifier.PlaceholderThreshold = 0.90
	}
	if c.Classifier.SemanticThreshold == 0 {
		c.Classifier.SemanticThreshold = 0.60
	}
	if c.Classifier.SemanticAmbigLow == 0 {
		c.Classifier.SemanticAmbigLow = 0.50
	}
	if c.Classifier.EntailmentThreshold == 0 {
		c.Classifier.EntailmentThreshold = 0.70
	}
	if c.Classifier.MinClauseLength == 0 {
		c.Classifier.MinClauseLength = 10
	}
	if c.Classifier.MaxClauseLength == 0 {
		c.Classifier.MaxClauseLength = 5000
	}
}
