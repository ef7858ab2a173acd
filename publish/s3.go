// Package publish uploads finished renders to S3-compatible object storage.
// Publication is optional; a run with no bucket configured skips it.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"briefcast/config"
	"briefcast/types"
)

// Publisher writes videos and their metadata documents under a key prefix.
type Publisher struct {
	client *s3.Client
	bucket string
	prefix string
}

// New builds a publisher from the run configuration using the standard AWS
// credential chain. Returns nil (and no error) when no bucket is configured.
func New(ctx context.Context, cfg config.Config) (*Publisher, error) {
	if cfg.S3Bucket == "" {
		return nil, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.S3Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.S3UsePathStyle
	})
	return &Publisher{client: client, bucket: cfg.S3Bucket, prefix: cfg.S3Prefix}, nil
}

// Publish uploads the MP4 and a JSON metadata document next to it, returning
// the video's object key.
func (p *Publisher) Publish(ctx context.Context, result *types.Result, meta types.VideoMeta) (string, error) {
	videoKey := p.key(result.UUID + ".mp4")
	if err := p.putFile(ctx, videoKey, result.VideoPath, "video/mp4"); err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}

	doc, err := json.MarshalIndent(struct {
		types.VideoMeta
		types.Result
	}{meta, *result}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	metaKey := p.key(result.UUID + ".json")
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(metaKey),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload metadata: %w", err)
	}
	return videoKey, nil
}

// Exists reports whether a render with this UUID was already published.
func (p *Publisher) Exists(ctx context.Context, id string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(p.key(id + ".mp4")),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}

func (p *Publisher) putFile(ctx context.Context, key, filePath, contentType string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	return err
}

func (p *Publisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}
