package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"TradeCore/internal/domain/models"
)

// Config is the immutable configuration value for one strategy process.
// It is loaded and validated once at startup; unknown keys are rejected.
type Config struct {
	Environment string `yaml:"environment" validate:"required"`

	Server struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`

	Strategy struct {
		Symbol              string   `yaml:"symbol" validate:"required"`
		Timeframes          []string `yaml:"timeframes" validate:"required,min=1"`
		AllowedPatterns     []string `yaml:"allowed_patterns" validate:"required,min=1"`
		RiskPct             float64  `yaml:"risk_pct" validate:"gt=0,lt=1"`
		TakeProfitPips      float64  `yaml:"take_profit_pips" validate:"gt=0"`
		MaxConcurrentTrades int      `yaml:"max_concurrent_trades" default:"3" validate:"gt=0"`
		MaxTradesPerDay     int      `yaml:"max_trades_per_day" default:"10" validate:"gt=0"`
		DailyLossLimitPct   float64  `yaml:"daily_loss_limit_pct" default:"0.10" validate:"gt=0,lt=1"`
		NewsBlockMinutes    int      `yaml:"news_block_minutes" default:"30" validate:"gte=0"`
		PollIntervalSeconds int      `yaml:"poll_interval_seconds" validate:"gt=0"`
		CandleLimit         int      `yaml:"candle_limit" default:"500" validate:"gte=100"`
		TradeMode           string   `yaml:"trade_mode" default:"dry_run" validate:"oneof=dry_run live"`
		DryRunBalance       float64  `yaml:"dry_run_balance" default:"10000"`
	} `yaml:"strategy"`

	Patterns struct {
		MinPatternBars    int     `yaml:"min_pattern_bars" default:"20" validate:"gt=0"`
		MaxPatternBars    int     `yaml:"max_pattern_bars" default:"100" validate:"gt=0"`
		SymmetryTolerance float64 `yaml:"symmetry_tolerance" default:"0.15" validate:"gt=0,lt=1"`
		RetestWindowBars  int     `yaml:"retest_window_bars" default:"10" validate:"gt=0"`
	} `yaml:"patterns"`

	Sizing struct {
		PipsUnitInUSD         float64 `yaml:"pips_unit_in_usd" default:"1.0" validate:"gt=0"`
		ATRPeriod             int     `yaml:"atr_period" default:"14" validate:"gt=1"`
		ATRMultiplier         float64 `yaml:"atr_multiplier" default:"2.0" validate:"gt=0"`
		StopLossPaddingPoints float64 `yaml:"stoploss_padding_points" default:"10" validate:"gte=0"`
		MinStopDistance       float64 `yaml:"min_stop_distance" default:"1.0" validate:"gte=0"`
		MinQty                float64 `yaml:"min_qty" default:"0.0001"`
		MaxQty                float64 `yaml:"max_qty" default:"100"`
	} `yaml:"sizing"`

	Exchange struct {
		RESTURL        string        `yaml:"rest_url" validate:"required"`
		WebSocketURL   string        `yaml:"websocket_url"`
		APIKey         string        `yaml:"api_key"`
		APISecret      string        `yaml:"api_secret"`
		Timeout        time.Duration `yaml:"timeout" default:"10s"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps" default:"5"`
	} `yaml:"exchange"`

	News struct {
		URL      string        `yaml:"url"`
		Currency string        `yaml:"currency" default:"USD"`
		CacheTTL time.Duration `yaml:"cache_ttl" default:"15m"`
		Timeout  time.Duration `yaml:"timeout" default:"10s"`
	} `yaml:"news"`

	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		TradesTopic string   `yaml:"trades_topic" default:"trade-records"`
		FillsTopic  string   `yaml:"fills_topic" default:"fill-events"`
		Compression string   `yaml:"compression" default:"gzip"`
		Consumer    struct {
			GroupID    string        `yaml:"group_id" default:"tradecore"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
			DLQTopic   string        `yaml:"dlq_topic"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Host        string        `yaml:"host"`
		Port        int           `yaml:"port" default:"9000"`
		Database    string        `yaml:"database" default:"tradecore"`
		User        string        `yaml:"user" default:"default"`
		Password    string        `yaml:"password"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"clickhouse"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads, defaults, and validates a YAML configuration file.
// Unknown keys fail the load rather than being silently ignored.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates raw YAML config bytes.
func Parse(b []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides credentials and mode
// from environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("EXCHANGE_API_KEY"); v != "" {
		c.Exchange.APIKey = v
	}
	if v := os.Getenv("EXCHANGE_API_SECRET"); v != "" {
		c.Exchange.APISecret = v
	}
	if v := os.Getenv("TRADE_MODE"); v != "" {
		c.Strategy.TradeMode = strings.ToLower(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks struct tags plus the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	for _, p := range c.Strategy.AllowedPatterns {
		if !models.IsValidPatternType(p) {
			return fmt.Errorf("allowed_patterns: unknown pattern %q", p)
		}
	}
	for _, tf := range c.Strategy.Timeframes {
		switch tf {
		case "15m", "30m", "1h", "2h", "4h", "1d":
		default:
			return fmt.Errorf("timeframes: unsupported timeframe %q", tf)
		}
	}
	if c.Strategy.TradeMode == "live" && (c.Exchange.APIKey == "" || c.Exchange.APISecret == "") {
		return fmt.Errorf("live trade_mode requires exchange api credentials")
	}
	if c.Patterns.MinPatternBars >= c.Patterns.MaxPatternBars {
		return fmt.Errorf("patterns: min_pattern_bars must be below max_pattern_bars")
	}
	if c.Sizing.MinQty >= c.Sizing.MaxQty {
		return fmt.Errorf("sizing: min_qty must be below max_qty")
	}
	return nil
}
