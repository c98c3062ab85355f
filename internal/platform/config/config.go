package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`

	TenantID      string `yaml:"tenant_id"`
	Backend       string `yaml:"backend"`
	DryRun        bool   `yaml:"dry_run"`
	PrincipalID   string `yaml:"principal_id"`
	PrincipalName string `yaml:"principal_name"`

	// InventoryCacheTTL bounds how long discovered backend inventory is
	// served from cache. Zero falls back to the adapter default.
	InventoryCacheTTL time.Duration `yaml:"inventory_cache_ttl"`

	ZonalNetworkID           string `yaml:"zonal_network_id"`
	ZonalAPIKey              string `yaml:"zonal_api_key"`
	ZonalBaseURL             string `yaml:"zonal_base_url"`
	ZonalDefaultAdvertiserID string `yaml:"zonal_default_advertiser_id"`

	// SlackWebhookURL is the fallback webhook when the tenant row carries
	// none. Empty disables notifications.
	SlackWebhookURL string `yaml:"slack_webhook_url"`
}

// Load reads configuration from the environment, then overlays the optional
// YAML file named by ADBROKER_CONFIG. File values win over env values.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:              envOr("SERVICE_NAME", "adbroker"),
		HTTPPort:                 envOr("HTTP_PORT", "8080"),
		PostgresDSN:              os.Getenv("POSTGRES_DSN"),
		KafkaBrokers:             splitList(os.Getenv("KAFKA_BROKERS")),
		TenantID:                 envOr("TENANT_ID", "default"),
		Backend:                  envOr("AD_BACKEND", "mock"),
		DryRun:                   envBool("DRY_RUN", false),
		PrincipalID:              envOr("PRINCIPAL_ID", "default"),
		PrincipalName:            envOr("PRINCIPAL_NAME", "Default Advertiser"),
		InventoryCacheTTL:        envDuration("INVENTORY_CACHE_TTL", 0),
		ZonalNetworkID:           os.Getenv("ZONAL_NETWORK_ID"),
		ZonalAPIKey:              os.Getenv("ZONAL_API_KEY"),
		ZonalBaseURL:             os.Getenv("ZONAL_BASE_URL"),
		ZonalDefaultAdvertiserID: os.Getenv("ZONAL_DEFAULT_ADVERTISER_ID"),
		SlackWebhookURL:          os.Getenv("SLACK_WEBHOOK_URL"),
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}

	if path := strings.TrimSpace(os.Getenv("ADBROKER_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return cfg, nil
}

func envOr(name string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var items []string
	for _, value := range strings.Split(raw, ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
