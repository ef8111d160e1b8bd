package storage

import (
	"context"
	"io"
)

// UploadResult итог загрузки объекта в хранилище.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader абстракция над объектным хранилищем аватаров.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL строит публичный URL объекта по ключу, без запроса к хранилищу.
	GetPublicURL(key string) string
}
