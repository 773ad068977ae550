package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/pinmon/internal/config/monitor"
	"github.com/NordCoder/pinmon/internal/obs"
	"github.com/NordCoder/pinmon/internal/repository/kafka"
)

// kafka-init creates the failure topic named in the monitor config before the
// monitor starts publishing to it.
func main() {
	path := os.Getenv("MONITOR_CONFIG")
	if path == "" {
		path = "config/monitor.yaml"
	}
	cfg, err := config.Read(path)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	brokers := cfg.Kafka.Brokers
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = strings.Split(v, ",")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	spec := kafka.TopicSpec{
		Name:              cfg.Kafka.Topic,
		NumPartitions:     envInt("KAFKA_PARTITIONS", 1),
		ReplicationFactor: envInt("KAFKA_RF", 1),
		MaxWait:           30 * time.Second,
	}
	if err := kafka.EnsureTopic(ctx, brokers, spec, l); err != nil {
		l.Fatal("ensure topic", zap.String("topic", spec.Name), zap.Error(err))
	}
	l.Info("kafka-init ok", zap.String("topic", spec.Name))
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, _ := strconv.Atoi(v); n > 0 {
			return n
		}
	}
	return def
}
