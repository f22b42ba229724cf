// SPDX-FileCopyrightText: © 2025 Global Dataverse Community Consortium
//
// SPDX-License-Identifier: Apache-2.0

package files

import (
	"context"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gdcc/dataverse-cli-sdk/sdk/config"
	"github.com/gdcc/dataverse-cli-sdk/sdk/utils"
)

const tracerName = "github.com/gdcc/dataverse-cli-sdk/sdk/services/files"

type FileService struct {
	http   config.CoreHTTP
	client *http.Client
	tracer trace.Tracer
	logger *log.Logger
}

// Opt is a functional option for the service.
type Opt func(*FileService) error

// WithHTTPClient replaces the client used to talk to the API server.
func WithHTTPClient(client *http.Client) Opt {
	return func(s *FileService) error {
		if client == nil {
			return errors.New("nil http client")
		}
		s.client = client
		return nil
	}
}

func WithTracer(tracer trace.Tracer) Opt {
	return func(s *FileService) error {
		if tracer != nil {
			s.tracer = tracer
		}
		return nil
	}
}

func WithLogger(logger *log.Logger) Opt {
	return func(s *FileService) error {
		s.logger = logger
		return nil
	}
}

func NewFileService(ctx context.Context, conf config.Config, opts ...Opt) (*FileService, error) {
	if conf.Core.BaseURL == "" {
		return nil, errors.New("missing Dataverse base url")
	}

	s := &FileService{
		client: config.NewHTTPClient(conf.Transfer),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.http = config.NewHTTPCore(s.client, conf.Core)
	return s, nil
}

func (s *FileService) log() *log.Logger {
	if s.logger != nil {
		return s.logger
	}
	return utils.Logger()
}

func (s *FileService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "files."+name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
