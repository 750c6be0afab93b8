package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
)

type AWSServiceProvider interface {
	PresignLink(ctx context.Context, bucketName string, fileName string) (string, error)
	UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error)
	GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error)
}

type AWSService struct {
	S3PresignClient *s3.PresignClient
	httpClient      *http.Client
}

// NewAWSService builds a presign client for a Cloudflare R2 account.
func NewAWSService(ctx context.Context, accountID, accessKeyID, accessKeySecret string) (*AWSService, error) {
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, accessKeySecret, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &AWSService{
		S3PresignClient: s3.NewPresignClient(s3.NewFromConfig(cfg)),
		httpClient:      &http.Client{},
	}, nil
}

func (awsService *AWSService) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(ctx, &s3.PutObjectInput{Bucket: &bucketName, Key: &fileName})
	if err != nil {
		return "", fmt.Errorf("presign upload %s: %w", fileName, err)
	}
	return request.URL, nil
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %w", err)
	}
	return presignedGetRequest.URL, nil
}

var allowedUploadMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
}

func (awsService *AWSService) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	mimeType := http.DetectContentType(fileContent)
	if !allowedUploadMimeTypes[mimeType] {
		return 0, fmt.Errorf("unsupported file type: %s", mimeType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(fileContent))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := awsService.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("upload to storage: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("upload to storage: status code %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// Object key prefixes, one per kind of stored image.
const (
	PrefixClothes = "clothes"
	PrefixAvatars = "avatars"
	PrefixTryOn   = "tryon"
)

var storagePrefixes = []string{PrefixClothes, PrefixAvatars, PrefixTryOn}

// StoreImage uploads the image under prefix and returns its object key.
func StoreImage(ctx context.Context, storage AWSServiceProvider, bucketName, prefix string, image DataURI) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, strings.ToLower(ulid.Make().String()), image.Extension())
	url, err := storage.PresignLink(ctx, bucketName, key)
	if err != nil {
		return "", err
	}
	if _, err := storage.UploadToPresignedURL(ctx, url, image.Data); err != nil {
		return "", err
	}
	return key, nil
}

// IsStorageKey reports whether an image reference is an object key written by
// StoreImage: a known prefix followed by a single path segment.
func IsStorageKey(ref string) bool {
	for _, prefix := range storagePrefixes {
		name, ok := strings.CutPrefix(ref, prefix+"/")
		if ok && name != "" && !strings.ContainsAny(name, "/\\?#:") && !strings.Contains(name, "..") {
			return true
		}
	}
	return false
}

// IsAllowedImageRef reports whether a caller-supplied image reference may be
// stored: empty, inline data, an https URL or one of our object keys.
func IsAllowedImageRef(ref string) bool {
	switch {
	case ref == "", IsDataURI(ref), IsStorageKey(ref):
		return true
	}
	u, err := url.Parse(ref)
	return err == nil && u.Scheme == "https" && u.Host != "" && u.User == nil
}
