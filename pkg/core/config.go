package core

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sailhook/pkg/sailthru"
)

// AppConfig represents the main application configuration.
type AppConfig struct {
	// Server holds server-specific configuration.
	Server struct {
		Port           int   `yaml:"port"`
		ReadTimeoutMS  int64 `yaml:"read_timeout_ms"`
		WriteTimeoutMS int64 `yaml:"write_timeout_ms"`
		IdleTimeoutMS  int64 `yaml:"idle_timeout_ms"`
		ReadHeaderMS   int64 `yaml:"read_header_timeout_ms"`
		MaxBodyBytes   int64 `yaml:"max_body_bytes"`
		DebugEvents    bool  `yaml:"debug_events"`
	} `yaml:"server"`
	// Sailthru holds the destination credentials and mapping options.
	Sailthru sailthru.Options `yaml:"sailthru"`
	// Watermill holds configuration for the message subscriber.
	Watermill WatermillConfig `yaml:"watermill"`
	// Storage holds configuration for the delivery log.
	Storage StorageConfig `yaml:"storage"`
}

// Config represents the application configuration including rules.
type Config struct {
	AppConfig   `yaml:",inline"`
	Rules       []Rule `yaml:"rules"`
	RulesStrict bool   `yaml:"rules_strict"`
}

// WatermillConfig holds the configuration for Watermill, which handles messaging.
type WatermillConfig struct {
	Driver    string          `yaml:"driver"`
	Drivers   []string        `yaml:"drivers"`
	Topic     string          `yaml:"topic"`
	GoChannel GoChannelConfig `yaml:"gochannel"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	NATS      NATSConfig      `yaml:"nats"`
	AMQP      AMQPConfig      `yaml:"amqp"`
	SQL       SQLConfig       `yaml:"sql"`
}

// Enabled reports whether a subscriber driver is configured at all.
func (c WatermillConfig) Enabled() bool {
	return c.Driver != "" || len(c.Drivers) > 0
}

// GoChannelConfig holds configuration for the GoChannel pub/sub.
type GoChannelConfig struct {
	OutputChannelBuffer            int64 `yaml:"output_buffer"`
	Persistent                     bool  `yaml:"persistent"`
	BlockPublishUntilSubscriberAck bool  `yaml:"block_publish_until_subscriber_ack"`
}

// KafkaConfig holds configuration for the Kafka pub/sub.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	ConsumerGroup string   `yaml:"consumer_group"`
}

// NATSConfig holds configuration for the NATS streaming pub/sub.
type NATSConfig struct {
	ClusterID string `yaml:"cluster_id"`
	ClientID  string `yaml:"client_id"`
	Durable   string `yaml:"durable"`
	URL       string `yaml:"url"`
}

// AMQPConfig holds configuration for the AMQP pub/sub.
type AMQPConfig struct {
	URL  string `yaml:"url"`
	Mode string `yaml:"mode"`
}

// SQLConfig holds configuration for the SQL pub/sub.
type SQLConfig struct {
	Driver           string `yaml:"driver"`
	DSN              string `yaml:"dsn"`
	Dialect          string `yaml:"dialect"`
	ConsumerGroup    string `yaml:"consumer_group"`
	InitializeSchema bool   `yaml:"initialize_schema"`
}

// StorageConfig holds configuration for the SQL-backed delivery log.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	Dialect     string `yaml:"dialect"`
	Table       string `yaml:"table"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

// Enabled reports whether the delivery log is configured.
func (c StorageConfig) Enabled() bool {
	return c.Driver != "" || c.DSN != ""
}

// LoadAppConfig loads the main application configuration from a YAML file.
// It applies default values.
func LoadAppConfig(path string) (AppConfig, error) {
	var cfg AppConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg)
	return cfg, nil
}

// LoadConfig loads the full application configuration, including rules, from a YAML file.
// It applies defaults and normalizes rules.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	applyDefaults(&cfg.AppConfig)
	normalized, err := normalizeRules(cfg.Rules)
	if err != nil {
		return cfg, err
	}
	cfg.Rules = normalized

	return cfg, nil
}

// RulesConfig represents the rule-specific parts of the configuration.
type RulesConfig struct {
	Rules  []Rule `yaml:"rules"`
	Strict bool   `yaml:"rules_strict"`
	Logger *log.Logger
}

// LoadRulesConfig loads only the rules from a YAML configuration file.
func LoadRulesConfig(path string) (RulesConfig, error) {
	var cfg RulesConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	normalized, err := normalizeRules(cfg.Rules)
	if err != nil {
		return cfg, err
	}
	cfg.Rules = normalized
	return cfg, nil
}

// NormalizeRules trims and validates rule definitions.
func NormalizeRules(rules []Rule) ([]Rule, error) {
	return normalizeRules(rules)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeoutMS == 0 {
		cfg.Server.ReadTimeoutMS = 5000
	}
	if cfg.Server.WriteTimeoutMS == 0 {
		cfg.Server.WriteTimeoutMS = 10000
	}
	if cfg.Server.IdleTimeoutMS == 0 {
		cfg.Server.IdleTimeoutMS = 60000
	}
	if cfg.Server.ReadHeaderMS == 0 {
		cfg.Server.ReadHeaderMS = 5000
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Sailthru.Endpoint == "" {
		cfg.Sailthru.Endpoint = sailthru.DefaultEndpoint
	}
	if cfg.Watermill.Topic == "" {
		cfg.Watermill.Topic = "analytics.events"
	}
	if cfg.Watermill.GoChannel.OutputChannelBuffer == 0 {
		cfg.Watermill.GoChannel.OutputChannelBuffer = 64
	}
}

func normalizeRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, 0, len(rules))
	for i := range rules {
		rule := rules[i]
		rule.When = strings.TrimSpace(rule.When)
		if rule.When == "" {
			return nil, fmt.Errorf("rule %d is missing when", i)
		}
		rule.Action = strings.ToLower(strings.TrimSpace(rule.Action))
		switch rule.Action {
		case "":
			rule.Action = ActionForward
		case ActionForward, ActionDrop:
		default:
			return nil, fmt.Errorf("rule %d has unknown action %q", i, rule.Action)
		}
		out = append(out, rule)
	}
	return out, nil
}
