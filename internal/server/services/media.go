package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linkup-social/linkup/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Media kinds; each kind maps to a key prefix in the bucket.
const (
	MediaKindPhoto = "photos"
	MediaKindVideo = "videos"
)

const presignValidity = 15 * time.Minute

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
	listObjects = func(c *s3.Client, ctx context.Context, in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return c.ListObjectsV2(ctx, in)
	}
)

// MediaObject is a stored item plus a short-lived download URL.
type MediaObject struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// MediaService fronts the blob store for uploaded photos and videos. Clients
// upload and download directly against presigned URLs; bytes never flow
// through this server.
type MediaService struct {
	config *config.Config
}

func NewMediaService(cfg *config.Config) *MediaService {
	return &MediaService{config: cfg}
}

func mediaStorageKey(kind string) string {
	d := time.Now()
	return fmt.Sprintf("uploads/%s/%d/%d/%d/%v", kind, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *MediaService) getClient() (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

// PresignUpload returns a fresh storage key and a presigned PUT URL for it.
func (s *MediaService) PresignUpload(ctx context.Context, kind string) (string, string, error) {

	client, err := s.getClient()
	if err != nil {
		return "", "", err
	}
	presignClient := newS3PresignClient(client)

	bucket := s.config.S3Bucket
	key := mediaStorageKey(kind)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))

	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// List returns the stored objects of the given kind, each with a presigned
// GET URL.
func (s *MediaService) List(ctx context.Context, kind string) ([]MediaObject, error) {

	client, err := s.getClient()
	if err != nil {
		return nil, err
	}
	presignClient := newS3PresignClient(client)

	bucket := s.config.S3Bucket
	prefix := "uploads/" + kind + "/"

	out, err := listObjects(client, ctx, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})
	if err != nil {
		return nil, err
	}

	objects := make([]MediaObject, 0, len(out.Contents))
	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)

		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(presignValidity))
		if err != nil {
			return nil, err
		}

		objects = append(objects, MediaObject{Key: key, URL: req.URL})
	}

	return objects, nil
}
