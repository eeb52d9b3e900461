package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer, если в конфигурации заданы брокеры.
// Без брокеров возвращает nil, nil: события корзины тогда не публикуются.
func initKafkaProducer(cfg Config, logger *log.Entry) (*kafka.Producer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaClientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", cfg.KafkaBrokers).Info("kafka producer initialized")
	return producer, nil
}

// initCatalogConsumer подписывает каталог на топик обновлений.
// Невалидные сообщения уходят в DLQ через producer, если он есть.
func initCatalogConsumer(cfg Config, repo catalog.Writer, producer *kafka.Producer, logger *log.Entry) (*kafka.Consumer, error) {
	if !cfg.KafkaEnabled() {
		return nil, nil
	}

	options := []kafka.ConsumerOption{
		kafka.WithConsumerLogger(logger.WithField("component", "catalog-consumer")),
	}
	if producer != nil {
		options = append(options, kafka.WithDLQProducer(producer))
	}

	handler := kafka.NewCatalogHandler(catalog.NewUpdater(repo, logger.WithField("component", "catalog-updater")))
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, []string{cfg.KafkaCatalogTopic}, handler, options...)
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"topic": cfg.KafkaCatalogTopic,
		"group": cfg.KafkaConsumerGroup,
	}).Info("catalog consumer initialized")
	return consumer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
