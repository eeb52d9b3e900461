// Package file хранит снимки корзин как JSON-файлы в каталоге и умеет
// следить за изменениями слота, сделанными другим процессом.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
)

const snapshotExt = ".json"

// CartStorage — слот корзины в виде файла <dir>/<escaped key>.json.
type CartStorage struct {
	dir string
}

// NewCartStorage создаёт каталог dir, если его нет.
func NewCartStorage(dir string) (*CartStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("cart storage dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart storage dir: %w", err)
	}
	return &CartStorage{dir: dir}, nil
}

// Dir возвращает каталог хранилища.
func (s *CartStorage) Dir() string {
	return s.dir
}

// Ping проверяет, что каталог хранилища существует.
func (s *CartStorage) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat cart storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cart storage path %s is not a directory", s.dir)
	}
	return nil
}

// Path возвращает путь файла для ключа.
func (s *CartStorage) Path(key string) string {
	return filepath.Join(s.dir, fileName(key))
}

func fileName(key string) string {
	return url.PathEscape(strings.TrimSpace(key)) + snapshotExt
}

// Load читает снимок.
func (s *CartStorage) Load(_ context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, domain.ErrCartKeyRequired
	}

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrCartSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cart snapshot: %w", err)
	}
	return data, nil
}

// Save атомарно заменяет файл слота: запись во временный файл и rename.
func (s *CartStorage) Save(_ context.Context, key string, snapshot []byte) error {
	if strings.TrimSpace(key) == "" {
		return domain.ErrCartKeyRequired
	}

	tmp, err := os.CreateTemp(s.dir, ".cart-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(snapshot); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		return fmt.Errorf("replace cart snapshot: %w", err)
	}
	return nil
}

// Delete удаляет файл слота.
func (s *CartStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}

var _ domain.CartStorage = (*CartStorage)(nil)
