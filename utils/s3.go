package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

func InitS3() {
	s3Region := os.Getenv("S3_REGION")
	if s3Region == "" {
		s3Region = os.Getenv("AWS_REGION") // fallback
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(s3Region))
	if err != nil {
		log.Fatalf("Unable to load AWS config for S3: %v", err)
	}

	s3Client = s3.NewFromConfig(cfg)
}

// UploadReport archives a rendered report (HTML or PDF) under reports/ and
// returns the object key. InitS3 must have been called.
func UploadReport(data []byte, filename string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("s3 client not initialized")
	}

	contentType := "application/octet-stream"
	switch filepath.Ext(filename) {
	case ".html":
		contentType = "text/html; charset=utf-8"
	case ".pdf":
		contentType = "application/pdf"
	case ".md":
		contentType = "text/markdown; charset=utf-8"
	}

	key := fmt.Sprintf("reports/%s-%d%s",
		filename[:len(filename)-len(filepath.Ext(filename))],
		time.Now().UnixNano(),
		filepath.Ext(filename),
	)

	_, err := s3Client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(os.Getenv("S3_BUCKET")),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %v", err)
	}

	return key, nil
}
