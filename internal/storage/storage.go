package storage

import (
	"fmt"
	"mime/multipart"

	"github.com/personage-hub/YaTube/config"
)

// Uploader 定义图片存储接口；返回的引用字符串由核心持久化，
// 存取细节由具体后端负责
type Uploader interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// NewUploader 根据配置选择存储后端
func NewUploader(cfg config.Config) (Uploader, error) {
	switch cfg.StorageBackend {
	case "local", "":
		return NewLocalStorage(cfg.LocalStoragePath)
	case "s3":
		return NewS3Client(cfg.S3Region, cfg.S3Bucket)
	case "gcs":
		return NewGCSClient(cfg.GCSProjectID, cfg.GCSBucketName, cfg.GCSCredentialsFile)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", cfg.StorageBackend)
	}
}
