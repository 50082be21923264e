package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/artiqmind/Lookali/pkg/config"
)

// Config holds all configuration for the search service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"SEARCH_HTTP_PORT" envDefault:"8010"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"20s"`

	// Search bounds
	MaxRadiusKm         float64 `env:"SEARCH_MAX_RADIUS_KM" envDefault:"50"`
	DefaultPageSize     int     `env:"SEARCH_DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize         int     `env:"SEARCH_MAX_PAGE_SIZE" envDefault:"100"`
	MaxPromotedFraction float64 `env:"SEARCH_MAX_PROMOTED_FRACTION" envDefault:"0.3"`
	GeoCellSizeDeg      float64 `env:"SEARCH_GEO_CELL_SIZE_DEG" envDefault:"0.05"`

	// Relevance weights
	WeightTextMatch float64 `env:"RANK_WEIGHT_TEXT_MATCH" envDefault:"0.4"`
	WeightProximity float64 `env:"RANK_WEIGHT_PROXIMITY" envDefault:"0.3"`
	WeightRating    float64 `env:"RANK_WEIGHT_RATING" envDefault:"0.2"`
	WeightPromotion float64 `env:"RANK_WEIGHT_PROMOTION" envDefault:"0.1"`

	// Catalog service URL for reindex fetching
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8080"`
	ReindexPageSize   int    `env:"REINDEX_PAGE_SIZE" envDefault:"500"`

	// Kafka
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID       string   `env:"KAFKA_GROUP_ID" envDefault:"lookali-search"`
	KafkaConsumeEvents bool     `env:"KAFKA_CONSUME_EVENTS" envDefault:"true"`

	// Redis (optional; used for event deduplication across instances)
	RedisAddr     string        `env:"REDIS_ADDR"`
	EventDedupTTL time.Duration `env:"EVENT_DEDUP_TTL" envDefault:"24h"`

	// Auth for the admin listing endpoints
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-do-not-use"`

	// Rate limiting
	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" envDefault:"50"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" envDefault:"100"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.MaxRadiusKm <= 0 {
		return fmt.Errorf("SEARCH_MAX_RADIUS_KM must be positive, got %g", c.MaxRadiusKm)
	}
	if c.MaxPromotedFraction <= 0 || c.MaxPromotedFraction > 1 {
		return fmt.Errorf("SEARCH_MAX_PROMOTED_FRACTION must be in (0,1], got %g", c.MaxPromotedFraction)
	}
	if c.DefaultPageSize < 1 || c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("invalid page size bounds: default=%d max=%d", c.DefaultPageSize, c.MaxPageSize)
	}
	if c.GeoCellSizeDeg <= 0 {
		return fmt.Errorf("SEARCH_GEO_CELL_SIZE_DEG must be positive, got %g", c.GeoCellSizeDeg)
	}
	for name, w := range map[string]float64{
		"RANK_WEIGHT_TEXT_MATCH": c.WeightTextMatch,
		"RANK_WEIGHT_PROXIMITY":  c.WeightProximity,
		"RANK_WEIGHT_RATING":     c.WeightRating,
		"RANK_WEIGHT_PROMOTION":  c.WeightPromotion,
	} {
		if w < 0 {
			return fmt.Errorf("%s must be non-negative, got %g", name, w)
		}
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %g", c.OTELSampleRate)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
