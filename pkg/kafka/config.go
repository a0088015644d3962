package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers  []string
	ClientID string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "storage-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains the storage platform topic names
var Topics = struct {
	ShipmentEvents string
	RackEvents     string
	Notifications  string
}{
	ShipmentEvents: "storage.shipments.events",
	RackEvents:     "storage.racks.events",
	Notifications:  "storage.notifications.outbound",
}

// TopicConfig holds configuration for a Kafka topic
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopicConfigs returns default configurations for storage topics
func DefaultTopicConfigs() []TopicConfig {
	const week = 7 * 24 * 60 * 60 * 1000
	return []TopicConfig{
		{Name: Topics.ShipmentEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.RackEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.Notifications, Partitions: 3, ReplicationFactor: 3, RetentionMs: week},
	}
}
