package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
environment: development
server:
  port: 8080
backend:
  type: kafka
  batch_size: 100
  batch_timeout: 5s
kafka:
  brokers: ["localhost:9092"]
  candles_topic: candles.raw
  patterns_topic: waves.patterns
redis:
  addr: localhost:6379
binance:
  websocket_url: wss://stream.binance.com:9443/ws
  symbols: ["BTCUSDT", "ETHUSDT"]
  interval: 1m
analysis:
  min_probability: 60
  n_impulse: 12
  n_correction: 12
  overlap_strategy: highest_probability
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Type != "kafka" {
		t.Errorf("backend.type = %q, want kafka", cfg.Backend.Type)
	}
	if cfg.Kafka.CandlesTopic != "candles.raw" || cfg.Kafka.PatternsTopic != "waves.patterns" {
		t.Errorf("topics = %q/%q", cfg.Kafka.CandlesTopic, cfg.Kafka.PatternsTopic)
	}
	if len(cfg.Binance.Symbols) != 2 {
		t.Errorf("symbols = %v", cfg.Binance.Symbols)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOLUSDT")
	t.Setenv("BACKEND", "clickhouse")
	t.Setenv("KAFKA_CANDLES_TOPIC", "candles.override")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if len(cfg.Binance.Symbols) != 1 || cfg.Binance.Symbols[0] != "SOLUSDT" {
		t.Errorf("symbols = %v, want [SOLUSDT]", cfg.Binance.Symbols)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Errorf("backend.type = %q, want clickhouse", cfg.Backend.Type)
	}
	if cfg.Kafka.CandlesTopic != "candles.override" {
		t.Errorf("candles topic = %q", cfg.Kafka.CandlesTopic)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, sampleYAML))
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing environment", func(c *Config) { c.Environment = "" }, true},
		{"bad backend", func(c *Config) { c.Backend.Type = "postgres" }, true},
		{"no symbols", func(c *Config) { c.Binance.Symbols = nil }, true},
		{"probability out of range", func(c *Config) { c.Analysis.MinProbability = 140 }, true},
		{"negative skip bound", func(c *Config) { c.Analysis.NImpulse = -1 }, true},
		{"negative scan step", func(c *Config) { c.Analysis.ScanStep = -5 }, true},
		{"bad overlap strategy", func(c *Config) { c.Analysis.OverlapStrategy = "first" }, true},
		{"empty overlap strategy ok", func(c *Config) { c.Analysis.OverlapStrategy = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaultsInterval(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Binance.Interval = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Binance.Interval != "1m" {
		t.Errorf("interval = %q, want 1m", cfg.Binance.Interval)
	}
}
