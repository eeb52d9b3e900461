package app

import (
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
)

func TestInitKafkaProducer_Disabled(t *testing.T) {
	producer, err := initKafkaProducer(DefaultConfig(), log.WithField("test", "kafka"))

	if err != nil {
		t.Errorf("expected no error without brokers, got %v", err)
	}
	if producer != nil {
		t.Error("expected nil producer without brokers")
	}
}

func TestInitKafkaProducer_InvalidBrokers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KafkaBrokers = []string{"invalid-broker:9999"}

	producer, err := initKafkaProducer(cfg, log.WithField("test", "kafka"))

	if err == nil {
		t.Error("expected error for invalid brokers")
	}
	if producer != nil {
		t.Error("expected nil producer on error")
	}
}

func TestInitCatalogConsumer_Disabled(t *testing.T) {
	consumer, err := initCatalogConsumer(DefaultConfig(), catalog.NewMemoryRepository(nil, nil), nil, log.WithField("test", "kafka"))

	if err != nil || consumer != nil {
		t.Fatalf("expected nil consumer without brokers, got %v %v", consumer, err)
	}
}

func TestCloseKafka_Nil(t *testing.T) {
	closeKafka(nil, log.WithField("test", "kafka"))
}
