// Package config reads process configuration once at startup: the
// protocol listen address, the store's database file, the operational
// HTTP sidecar, and the notification transport credentials.
package config

import (
	"os"
	"strings"
)

type Config struct {
	ListenAddr   string
	HealthAddr   string
	DBPath       string
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string
}

func Load() *Config {
	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":5000"
	}

	healthAddr := os.Getenv("HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":8081"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "db/league.db"
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "league-events"
	}

	return &Config{
		ListenAddr:   addr,
		HealthAddr:   healthAddr,
		DBPath:       dbPath,
		KafkaEnabled: os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers: strings.Split(brokers, ","),
		KafkaTopic:   topic,
	}
}
