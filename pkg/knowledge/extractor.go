package knowledge

import (
	"context"
	"fmt"
	"os"
)

// FileExtractor reads plain-text source documents (pre-extracted text of
// the reference guides) from disk.
type FileExtractor struct{}

var _ Extractor = (*FileExtractor)(nil)

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(ctx context.Context, source Source) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(source.Path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", source.Name, err)
	}
	return string(data), nil
}
