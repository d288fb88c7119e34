package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps the media object store. An object's key is the "storage id"
// handed out to drafts and podcasts; the public URL is derived from it and the
// two are carried separately everywhere downstream.
type Client struct {
	client     *minio.Client
	bucketName string
	publicURL  string
}

// NewClientFromEnv builds a Client from MINIO_* environment variables and
// makes sure the bucket exists.
func NewClientFromEnv() (*Client, error) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:9000"
	}
	bucket := os.Getenv("MINIO_BUCKET")
	if bucket == "" {
		bucket = "podify"
	}
	publicURL := os.Getenv("MINIO_PUBLIC_URL")
	if publicURL == "" {
		publicURL = "http://" + endpoint
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"), ""),
		Secure: os.Getenv("MINIO_USE_SSL") == "true",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", bucket, err)
		}
		log.Printf("Created bucket %s", bucket)
	}

	return &Client{client: client, bucketName: bucket, publicURL: publicURL}, nil
}

// Upload stores data under objectName and returns its public URL.
func (c *Client) Upload(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucketName, objectName, bytes.NewReader(data),
		int64(len(data)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return c.ObjectURL(objectName), nil
}

// Remove deletes an object. Used to clean up results that lost the
// last-request-wins race and were never committed to a draft.
func (c *Client) Remove(ctx context.Context, objectName string) error {
	return c.client.RemoveObject(ctx, c.bucketName, objectName, minio.RemoveObjectOptions{})
}

// ObjectURL returns the public URL for an object key.
func (c *Client) ObjectURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucketName, objectName)
}
