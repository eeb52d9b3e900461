package kafka

import (
	"context"

	"github.com/IBM/sarama"
)

// CatalogApplier применяет обновление каталога из payload.
type CatalogApplier interface {
	ApplyUpdate(payload []byte) error
}

// NewCatalogHandler возвращает обработчик topic'а обновлений каталога.
// Невалидное сообщение не станет валидным при повторе, поэтому ошибки permanent.
func NewCatalogHandler(applier CatalogApplier) MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		return Permanent(applier.ApplyUpdate(message.Value))
	}
}
