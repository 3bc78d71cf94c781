package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Currency is one entry of the currency registry: a display name used as the
// search term and the ticker symbol quoted against Config.QuoteCurrency.
type Currency struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

// Ticker returns the Yahoo pair, e.g. BTC-EUR.
func (c Currency) Ticker(quote string) string {
	return strings.ToUpper(c.Symbol) + "-" + strings.ToUpper(quote)
}

type Config struct {
	Currencies    []Currency
	QuoteCurrency string
	LookbackDays  int

	YahooBaseURL  string
	TrendsBaseURL string
	TrendsHL      string
	TrendsTZ      int
	TrendsQPS     float64
	HTTPTimeout   time.Duration

	GalleryAddr string

	TelegramToken  string
	TelegramChatID int64
	OpenAIKey      string
	OpenAIModel    string

	LogLevel string
}

// DefaultCurrencies is the built-in registry.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Name: "BITCOIN", Symbol: "BTC"},
		{Name: "ETHEREUM", Symbol: "ETH"},
		{Name: "DOGECOIN", Symbol: "DOGE"},
		{Name: "LITECOIN", Symbol: "LTC"},
	}
}

type registryFile struct {
	Currencies []Currency `yaml:"currencies"`
}

// LoadCurrencies reads a YAML registry of the form
//
//	currencies:
//	  - name: BITCOIN
//	    symbol: BTC
func LoadCurrencies(path string) ([]Currency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read currencies: %w", err)
	}
	var rf registryFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse currencies: %w", err)
	}
	return rf.Currencies, nil
}

// Load reads configuration from the environment, after loading a .env file if
// one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := &Config{
		Currencies:    DefaultCurrencies(),
		QuoteCurrency: getEnvWithDefault("QUOTE_CURRENCY", "EUR"),
		LookbackDays:  getEnvIntWithDefault("LOOKBACK_DAYS", 365),
		YahooBaseURL:  strings.TrimRight(getEnvWithDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"), "/"),
		TrendsBaseURL: strings.TrimRight(getEnvWithDefault("TRENDS_BASE_URL", "https://trends.google.com"), "/"),
		TrendsHL:      getEnvWithDefault("TRENDS_HL", "en-US"),
		TrendsTZ:      getEnvIntWithDefault("TRENDS_TZ", 360),
		TrendsQPS:     getEnvFloatWithDefault("TRENDS_QPS", 1),
		HTTPTimeout:   time.Duration(getEnvIntWithDefault("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		GalleryAddr:   getEnvWithDefault("GALLERY_ADDR", ":9095"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvWithDefault("OPENAI_MODEL", "gpt-4"),
		LogLevel:      getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if path := os.Getenv("CURRENCIES_FILE"); path != "" {
		currencies, err := LoadCurrencies(path)
		if err != nil {
			return nil, err
		}
		cfg.Currencies = currencies
	}

	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if len(c.Currencies) == 0 {
		return fmt.Errorf("currency registry is empty")
	}
	seen := make(map[string]struct{}, len(c.Currencies))
	for i, cur := range c.Currencies {
		if strings.TrimSpace(cur.Name) == "" || strings.TrimSpace(cur.Symbol) == "" {
			return fmt.Errorf("currency %d: name and symbol are required", i)
		}
		key := strings.ToUpper(cur.Name)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("currency %s listed twice", key)
		}
		seen[key] = struct{}{}
	}
	if c.QuoteCurrency == "" {
		return fmt.Errorf("quote currency is required")
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive")
	}
	if c.TrendsQPS <= 0 {
		return fmt.Errorf("trends qps must be positive")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// TelegramEnabled reports whether charts should be delivered to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("not an integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("not a number, using default")
	}
	return defaultValue
}
