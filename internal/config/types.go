package config

import "time"

// Config represents the complete CLI configuration structure.
type Config struct {
	Endpoints []EndpointConfig `mapstructure:"endpoints"`
	Fetch     FetchConfig      `mapstructure:"fetch"`
	Auth      AuthConfig       `mapstructure:"auth"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Logging   LoggingConfig    `mapstructure:"logging"`
}

// EndpointConfig describes one paginated resource to fetch.
type EndpointConfig struct {
	// Name identifies the endpoint on the command line.
	Name string `mapstructure:"name"`

	// URL is the resource URL without pagination parameters.
	URL string `mapstructure:"url"`

	// Method defaults to GET.
	Method string `mapstructure:"method"`

	// Params are fixed "key=value" query parameters sent with every
	// page request, in order.
	Params []string `mapstructure:"params"`

	// ArrayName names the body field holding the page's elements.
	// Empty means the whole body is the element container.
	ArrayName string `mapstructure:"array_name"`

	// Mode selects the pagination strategy: "heuristic" (page numbers,
	// unknown total) or "bounded" (offsets, declared total).
	Mode string `mapstructure:"mode"`

	// PageParam is the page-number parameter for heuristic mode.
	PageParam string `mapstructure:"page_param"`

	// StartParam is the offset parameter for bounded mode.
	StartParam string `mapstructure:"start_param"`

	// SizeParam is the page-size parameter.
	SizeParam string `mapstructure:"size_param"`

	// TotalField is the body field declaring the maximum index, for
	// bounded mode.
	TotalField string `mapstructure:"total_field"`
}

// FetchConfig contains engine tuning shared by all endpoints.
type FetchConfig struct {
	PageSize      int           `mapstructure:"page_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	LookaheadSize int           `mapstructure:"lookahead_size"`
	MaxInFlight   int           `mapstructure:"max_in_flight"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds an opaque credential header applied to outgoing
// requests. The value never appears in logs or output records.
type AuthConfig struct {
	Header string `mapstructure:"header"`
	Value  string `mapstructure:"value"`
}

// RedisConfig enables the shared response cache and error-budget gate.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
