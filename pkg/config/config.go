package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Swigstan1810/Heights-sub002/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Providers struct {
		OpenAI struct {
			APIKey    string        `yaml:"api_key"`
			Model     string        `yaml:"model"`
			MaxTokens int           `yaml:"max_tokens"`
			Timeout   time.Duration `yaml:"timeout"`
		} `yaml:"openai"`
		Perplexity struct {
			APIKey    string        `yaml:"api_key"`
			BaseURL   string        `yaml:"base_url"`
			Model     string        `yaml:"model"`
			MaxTokens int           `yaml:"max_tokens"`
			Timeout   time.Duration `yaml:"timeout"`
		} `yaml:"perplexity"`
		Finnhub struct {
			APIKey        string        `yaml:"api_key"`
			BaseURL       string        `yaml:"base_url"`
			WebSocketURL  string        `yaml:"websocket_url"`
			StreamSymbols []string      `yaml:"stream_symbols"`
			Timeout       time.Duration `yaml:"timeout"`
		} `yaml:"finnhub"`
		CoinGecko struct {
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"coingecko"`
		NewsAPI struct {
			APIKey  string        `yaml:"api_key"`
			BaseURL string        `yaml:"base_url"`
			Timeout time.Duration `yaml:"timeout"`
		} `yaml:"newsapi"`
		MaxRPS float64 `yaml:"max_rps"` // outbound per-provider rate cap
	} `yaml:"providers"`
	Assistant struct {
		QueryTimeout  time.Duration `yaml:"query_timeout"`
		MaxRetries    int           `yaml:"max_retries"`
		QuoteCacheTTL time.Duration `yaml:"quote_cache_ttl"`
		NewsCacheTTL  time.Duration `yaml:"news_cache_ttl"`
		Synthesis     struct {
			MaxContinuations  int `yaml:"max_continuations"`
			CompleteLineCount int `yaml:"complete_line_count"`
		} `yaml:"synthesis"`
		Confidence struct {
			TechnicalWeight   float64 `yaml:"technical_weight"`
			FundamentalWeight float64 `yaml:"fundamental_weight"`
			MarketWeight      float64 `yaml:"market_weight"`
			NewsWeight        float64 `yaml:"news_weight"`
		} `yaml:"confidence"`
	} `yaml:"assistant"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Providers.OpenAI.APIKey = v
	}
	if v := os.Getenv("PERPLEXITY_API_KEY"); v != "" {
		c.Providers.Perplexity.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("NEWSAPI_API_KEY"); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Assistant.QueryTimeout <= 0 {
		c.Assistant.QueryTimeout = 30 * time.Second
	}
	if c.Assistant.MaxRetries <= 0 {
		c.Assistant.MaxRetries = 2
	}
	if c.Assistant.QuoteCacheTTL <= 0 {
		c.Assistant.QuoteCacheTTL = 30 * time.Second
	}
	if c.Assistant.NewsCacheTTL <= 0 {
		c.Assistant.NewsCacheTTL = 5 * time.Minute
	}
	if c.Assistant.Synthesis.MaxContinuations <= 0 {
		c.Assistant.Synthesis.MaxContinuations = 2
	}
	if c.Assistant.Synthesis.CompleteLineCount <= 0 {
		c.Assistant.Synthesis.CompleteLineCount = 8
	}
	cw := &c.Assistant.Confidence
	if cw.TechnicalWeight == 0 && cw.FundamentalWeight == 0 && cw.MarketWeight == 0 && cw.NewsWeight == 0 {
		cw.TechnicalWeight = 0.3
		cw.FundamentalWeight = 0.3
		cw.MarketWeight = 0.2
		cw.NewsWeight = 0.2
	}
	if c.Providers.MaxRPS <= 0 {
		c.Providers.MaxRPS = 5
	}
	if c.Providers.OpenAI.Model == "" {
		c.Providers.OpenAI.Model = "gpt-4o"
	}
	if c.Providers.OpenAI.MaxTokens <= 0 {
		c.Providers.OpenAI.MaxTokens = 2048
	}
	if c.Providers.Perplexity.BaseURL == "" {
		c.Providers.Perplexity.BaseURL = "https://api.perplexity.ai"
	}
	if c.Providers.Perplexity.Model == "" {
		c.Providers.Perplexity.Model = "sonar"
	}
	if c.Providers.Perplexity.MaxTokens <= 0 {
		c.Providers.Perplexity.MaxTokens = 2048
	}
	if c.Providers.Finnhub.BaseURL == "" {
		c.Providers.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		c.Providers.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.Providers.NewsAPI.BaseURL == "" {
		c.Providers.NewsAPI.BaseURL = "https://newsapi.org/v2"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "assistant.queries"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Providers.OpenAI.APIKey == "" && c.Providers.Perplexity.APIKey == "" {
		return fmt.Errorf("at least one reasoning provider api key is required")
	}
	w := c.Assistant.Confidence
	sum := w.TechnicalWeight + w.FundamentalWeight + w.MarketWeight + w.NewsWeight
	if sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("confidence weights must sum to 1.0, got %.2f", sum)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
