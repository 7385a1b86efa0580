package etl

import (
	"fmt"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// FileChecksum считает xxh3-64 хеш файла данных.
// Хеши входных дампов записываются в журнал и публикуются вместе
// с результатом загрузки: два прогона с одинаковыми хешами обязаны
// дать одинаковое содержимое базы.
func FileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read file for checksum: %w", err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
