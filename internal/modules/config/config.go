package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatIDTelegramENV = "TELEGRAM_CHAT_ID"
	databaseDSN       = "DATABASE_DSN"
)

// Symbol — отслеживаемый инструмент: биржевой тикер + символ индикаторного
// провайдера. Volatility=0 означает глобальный дефолт.
type Symbol struct {
	Name       string  `yaml:"name"`
	TV         string  `yaml:"tv"`
	Volatility float64 `yaml:"volatility"`
}

// Config ...
type Config struct {
	Telegram struct {
		Token   string `yaml:"token"`
		ChatID  int64  `yaml:"chat_id"`
		Enabled bool   `yaml:"enabled"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	DataDir string `yaml:"data_dir"`
	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`

	Symbols []Symbol `yaml:"symbols"`

	Feed struct {
		Mode    string `yaml:"mode"` // http | ws
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"feed"`
	Indicator struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"indicator"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	// Уровни
	LevelsMode string  `yaml:"levels_mode"` // percent | atr
	Volatility float64 `yaml:"volatility"`  // например 0.005 => SL на 0.5% от цены

	// Политики
	// TP1 по умолчанию только алерт; некоторые старые варианты закрывали по TP1
	CloseOnTP1 bool `yaml:"close_on_tp1"`
	// запасной тренд по последним двум ценам, когда голосов нет вообще
	TrendFallback bool `yaml:"trend_fallback"`

	// Цикл / дебаунс — задаются окружением
	CheckInterval     time.Duration
	DashboardInterval time.Duration
	HoldAlertInterval time.Duration
	TradeEvalAfter    time.Duration

	// Голоса по таймфреймам
	Timeframes    []string
	VoteThreshold int

	// Внешние вызовы
	FetchTimeout time.Duration
	FetchRetries int

	ATRPeriod   int
	HistorySize int
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		LevelsMode: getenvDefault("LEVELS_MODE", "percent"),
		Volatility: floatFromEnv("VOLATILITY", 0.005),

		CheckInterval: durationFromEnv("CHECK_INTERVAL", "60s"),
		// легаси-переменные в секундах, как у старых ботов
		DashboardInterval: time.Duration(intFromEnv("DASHBOARD_INTERVAL", 1800)) * time.Second,
		HoldAlertInterval: time.Duration(intFromEnv("HOLD_ALERT_INTERVAL", 1800)) * time.Second,
		TradeEvalAfter:    time.Duration(intFromEnv("TRADE_EVAL_SECONDS", 600)) * time.Second,

		Timeframes:    listFromEnv("TIMEFRAMES", "1h,4h,1d"),
		VoteThreshold: intFromEnv("VOTE_THRESHOLD", 2),

		FetchTimeout: durationFromEnv("FETCH_TIMEOUT", "10s"),
		FetchRetries: intFromEnv("FETCH_RETRIES", 3),

		ATRPeriod:   intFromEnv("ATR_PERIOD", 14),
		HistorySize: intFromEnv("CANDLE_HISTORY", 50),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	if v := os.Getenv(chatIDTelegramENV); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Telegram.ChatID = id
		}
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if config.DataDir == "" {
		config.DataDir = getenvDefault("DATA_DIR", "data")
	}
	if config.Feed.Mode == "" {
		config.Feed.Mode = "http"
	}
	if config.Feed.BaseURL == "" {
		config.Feed.BaseURL = "https://api.binance.com"
	}
	if config.Feed.WSURL == "" {
		config.Feed.WSURL = "wss://stream.binance.com:9443"
	}
	if config.Indicator.BaseURL == "" {
		config.Indicator.BaseURL = "https://scanner.tradingview.com"
	}

	// легаси-контракт .env: SYMBOLS/TV_SYMBOLS парами через запятую
	if len(config.Symbols) == 0 {
		names := listFromEnv("SYMBOLS", "")
		tvs := listFromEnv("TV_SYMBOLS", "")
		for i, name := range names {
			s := Symbol{Name: name}
			if i < len(tvs) {
				s.TV = tvs[i]
			}
			config.Symbols = append(config.Symbols, s)
		}
	}
	if len(config.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols configured")
	}
	for i := range config.Symbols {
		if config.Symbols[i].TV == "" {
			config.Symbols[i].TV = "BINANCE:" + config.Symbols[i].Name
		}
	}

	return &config, nil
}

// SymbolVolatility — волатильность для расчёта уровней по конкретному символу.
func (c *Config) SymbolVolatility(name string) float64 {
	for _, s := range c.Symbols {
		if s.Name == name && s.Volatility > 0 {
			return s.Volatility
		}
	}
	return c.Volatility
}

func getenvRequired(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("env %s is required", key))
	}
	return v
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

func listFromEnv(key, def string) []string {
	raw := getenvDefault(key, def)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
