package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader — объектное хранилище для архива загруженных таблиц
// импорта: исходный файл сохраняется до материализации, чтобы импорт
// можно было разобрать и повторить. Архив только накапливается,
// операции удаления нет.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	GetPublicURL(key string) string
}
