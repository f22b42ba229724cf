// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client is only used to clean up objects that were uploaded through a
// ticket but never registered.
type S3Client struct {
	s3        *s3.Client
	pathStyle bool
}

func NewS3Client(ctx context.Context, cfgCreds S3Config) (*S3Client, error) {
	creds := aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		cfgCreds.AccessKey,
		cfgCreds.SecretKey,
		cfgCreds.AccessToken,
	))

	region := cfgCreds.Region
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(creds),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	pathStyle := cfgCreds.EndpointURL != ""
	s3Options := func(o *s3.Options) {
		if pathStyle {
			o.BaseEndpoint = aws.String(cfgCreds.EndpointURL)
			o.UsePathStyle = true
		}
	}

	return &S3Client{
		s3:        s3.NewFromConfig(cfg, s3Options),
		pathStyle: pathStyle,
	}, nil
}

// DeleteObjectAt removes the object a pre-signed URL points to.
func (c *S3Client) DeleteObjectAt(ctx context.Context, objectURL string) error {
	bucket, key, err := ObjectLocation(objectURL, c.pathStyle)
	if err != nil {
		return err
	}
	return c.DeleteObject(ctx, bucket, key)
}

func (c *S3Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ObjectLocation extracts bucket and key from an object URL. With path-style
// addressing the bucket is the first path segment, otherwise it is the first
// label of the host name.
func ObjectLocation(objectURL string, pathStyle bool) (bucket, key string, err error) {
	u, err := url.Parse(objectURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid object url: %w", err)
	}
	path := strings.TrimPrefix(u.Path, "/")

	if pathStyle {
		bucket, key, _ = strings.Cut(path, "/")
	} else {
		bucket, _, _ = strings.Cut(u.Hostname(), ".")
		key = path
	}
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("cannot locate bucket and key in %s", u.Redacted())
	}
	return bucket, key, nil
}
