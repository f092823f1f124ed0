// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package deadletter archives batches that failed to commit to
// durable storage, as newline-delimited JSON objects in S3. The
// archive is write-only: nothing in the ingestion core ever reads it
// back, since restart-restoration of rolled-up aggregates is out of
// scope.
package deadletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
)

// Archiver uploads failed batches to an S3 bucket for later manual
// inspection. Archiving is best-effort: each upload runs synchronously
// in the caller, bounded by a 10-second timeout, and a failure to
// archive is only logged, never returned.
type Archiver struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config configures the dead-letter archiver.
type Config struct {
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// NewArchiver builds an Archiver from cfg. An empty Bucket disables
// archiving; callers get a non-nil Archiver whose Archive is a no-op,
// so call sites never need a nil check.
func NewArchiver(ctx context.Context, cfg Config) (*Archiver, error) {
	if cfg.Bucket == "" {
		return &Archiver{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("deadletter: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.Endpoint != ""
	})

	return &Archiver{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Archive uploads batch as one NDJSON object keyed by the current
// time, tagging it with the cause of the failure. Disabled archivers
// (empty bucket) do nothing.
func (a *Archiver) Archive(ctx context.Context, batch any, cause error) {
	if a == nil || a.client == nil {
		return
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(map[string]any{
		"failed_at": time.Now().UTC().Format(time.RFC3339Nano),
		"cause":     cause.Error(),
		"batch":     batch,
	}); err != nil {
		cclog.Errorf("deadletter: encoding batch: %v", err)
		return
	}

	key := fmt.Sprintf("%s%d.json", a.prefix, time.Now().UnixNano())

	uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := a.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		cclog.Errorf("deadletter: archiving failed batch to s3://%s/%s: %v", a.bucket, key, err)
	}
}
