package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	imageutil "lenslink_backend/pkg/utils/image"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	MaxFileSize = 5 * 1024 * 1024 // 5MB
	BucketName  = "lenslink-portfolio"
	Region      = "eu-west-1"
)

var s3Client *s3.Client

func InitStorage() error {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(Region),
	}

	// S3 uyumlu depolama için statik anahtarlar env'den gelebilir
	if key := os.Getenv("S3_ACCESS_KEY_ID"); key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(key, os.Getenv("S3_SECRET_ACCESS_KEY"), ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return fmt.Errorf("unable to load SDK config: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
	return nil
}

// UploadPortfolioImage resmi doğrular, yeniden encode eder ve S3'e yükler.
func UploadPortfolioImage(file *multipart.FileHeader, userID uint) (string, error) {
	if file.Size > MaxFileSize {
		return "", fmt.Errorf("file size too large. Maximum size is %d bytes", MaxFileSize)
	}

	contentType := file.Header.Get("Content-Type")
	if !imageutil.AllowedImageTypes[contentType] {
		return "", fmt.Errorf("invalid file type. Allowed types are: jpeg, png, webp")
	}

	buf, encodedType, err := imageutil.ReencodePortfolioImage(file)
	if err != nil {
		return "", err
	}

	// Dosya adı: user_id/timestamp_original_name
	fileName := fmt.Sprintf("portfolio/%d/%d_%s",
		userID,
		time.Now().Unix(),
		filepath.Base(file.Filename),
	)

	_, err = s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(encodedType),
	})

	if err != nil {
		return "", fmt.Errorf("could not upload to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", BucketName, Region, fileName), nil
}

// DeleteImage S3'ten resmi siler
func DeleteImage(imageURL string) error {
	parts := strings.Split(imageURL, "/")
	key := strings.Join(parts[3:], "/")

	_, err := s3Client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(BucketName),
		Key:    aws.String(key),
	})

	return err
}
