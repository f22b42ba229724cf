// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package directupload

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

const tracerName = "github.com/gdcc/dataverse-cli-sdk/sdk/services/directupload"

type DirectUploadService struct {
	http     config.CoreHTTP
	storage  config.StorageHTTP
	s3       *config.S3Client
	transfer config.TransferConfig
	client   *http.Client
	tracer   trace.Tracer
	logger   *log.Logger
}

// Opt is a functional option for the service.
type Opt func(*DirectUploadService) error

// WithHTTPClient replaces the client used for both the API server and storage.
func WithHTTPClient(client *http.Client) Opt {
	return func(s *DirectUploadService) error {
		if client == nil {
			return errors.New("nil http client")
		}
		s.client = client
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(s *DirectUploadService) error {
		if tracer != nil {
			s.tracer = tracer
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) Opt {
	return func(s *DirectUploadService) error {
		s.logger = logger
		return nil
	}
}

func NewDirectUploadService(ctx context.Context, conf config.Config, opts ...Opt) (*DirectUploadService, error) {
	if conf.Core.BaseURL == "" {
		return nil, errors.New("missing Dataverse base url")
	}
	if conf.Transfer.Concurrency < 0 {
		return nil, fmt.Errorf("invalid concurrency %d", conf.Transfer.Concurrency)
	}
	if conf.Transfer.OrphanPolicy == "" {
		conf.Transfer.OrphanPolicy = config.OrphanKeep
	}

	s := &DirectUploadService{
		transfer: conf.Transfer,
		client:   config.NewHTTPClient(conf.Transfer),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.http = config.NewHTTPCore(s.client, conf.Core)
	s.storage = config.NewStorageHTTP(s.client)

	if conf.Transfer.OrphanPolicy == config.OrphanDelete {
		if !conf.S3.Configured() {
			s.log().Warn("orphan policy is delete but no S3 credentials are configured, orphans will be kept")
		} else {
			s3c, err := config.NewS3Client(ctx, conf.S3)
			if err != nil {
				return nil, fmt.Errorf("S3 init failed: %w", err)
			}
			s.s3 = s3c
		}
	}

	return s, nil
}

func (s *DirectUploadService) log() *log.Logger {
	if s.logger != nil {
		return s.logger
	}
	return utils.Logger()
}

func (s *DirectUploadService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "directupload."+name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
