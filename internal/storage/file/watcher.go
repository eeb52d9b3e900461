package file

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// ChangeFunc получает новое содержимое слота; err == domain.ErrCartSnapshotNotFound,
// если слот удалён.
type ChangeFunc func(snapshot []byte, err error)

// Watch следит за файлом слота key и вызывает onChange после каждой записи,
// пока ctx не отменён. Блокирует вызывающего.
func (s *CartStorage) Watch(ctx context.Context, key string, onChange ChangeFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Следим за каталогом: rename заменяет inode файла, и watch на сам файл теряется.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("watch %s: %w", s.dir, err)
	}

	target := fileName(key)
	logger := log.WithFields(log.Fields{"component": "cart-file-watcher", "cart_key": key})

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			onChange(s.Load(ctx, key))
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WithError(werr).Warn("cart file watcher error")
		}
	}
}
