// server/internal/s3/uploader.go
package s3

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"coffee-coop-ledger-api-server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Uploader struct {
	Client           *s3.Client
	Bucket           string
	Region           string
	CloudFrontDomain string
}

func NewUploader(cfg config.S3Config) (*Uploader, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(sdkConfig)

	return &Uploader{
		Client:           s3Client,
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
	}, nil
}

// UploadDocument uploads a metadata/evidence document and returns its
// content-addressed reference plus a resolvable URL.
//
// Object key là SHA-256 của nội dung nên ref ("sha256:<hex>") không phụ
// thuộc vào bucket; ledger chỉ lưu ref, còn URL dành cho indexer phía ngoài.
func (u *Uploader) UploadDocument(ctx context.Context, file io.Reader, contentType string) (ref string, url string, err error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", "", fmt.Errorf("failed to read document: %w", err)
	}

	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])
	objectKey := "metadata/" + digest

	_, err = u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload document to S3: %w", err)
	}

	if u.CloudFrontDomain != "" {
		// Nếu có, xây dựng URL CloudFront
		url = fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	} else {
		// Nếu không, quay trở lại xây dựng URL S3 (fallback)
		url = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
	}

	return "sha256:" + digest, url, nil
}
