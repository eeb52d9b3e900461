package catalog

import (
	"encoding/json"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

// Типы сообщений об изменении каталога (CMS-вебхуки, ретранслированные в Kafka).
const (
	EventProductUpserted = "catalog.product_upserted"
	EventProductDeleted  = "catalog.product_deleted"
)

// Update — сообщение об изменении товара.
type Update struct {
	Type    string        `json:"type"`
	Product ProductRecord `json:"product"`
}

// Writer — каталог, принимающий изменения.
type Writer interface {
	Upsert(p domain.Product)
	Delete(id string)
}

// Updater применяет сообщения об изменениях к каталогу.
type Updater struct {
	writer Writer
	logger *log.Entry
}

// NewUpdater создаёт обработчик обновлений каталога.
func NewUpdater(writer Writer, logger *log.Entry) *Updater {
	if logger == nil {
		logger = log.WithField("component", "catalog-updater")
	}
	return &Updater{writer: writer, logger: logger}
}

// ApplyUpdate разбирает payload и применяет изменение. Ошибка означает
// невалидное сообщение: повторная доставка его не исправит.
func (u *Updater) ApplyUpdate(payload []byte) error {
	var update Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return fmt.Errorf("decode catalog update: %w", err)
	}

	switch strings.TrimSpace(update.Type) {
	case EventProductUpserted:
		product, err := update.Product.ToProduct()
		if err != nil {
			return err
		}
		u.writer.Upsert(product)
		u.logger.WithField("product_id", product.ID).Info("catalog product upserted")
	case EventProductDeleted:
		id := strings.TrimSpace(update.Product.ID)
		if id == "" {
			return fmt.Errorf("catalog delete: product id is required")
		}
		u.writer.Delete(id)
		u.logger.WithField("product_id", id).Info("catalog product deleted")
	default:
		return fmt.Errorf("unsupported catalog update type %q", update.Type)
	}
	return nil
}
