// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcs implements the fs.FS interface using Google Cloud
// Storage.
package gcs

import (
	"context"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"cacheplot/storage/fs"
)

// impl is an fs.FS backed by Google Cloud Storage.
type impl struct {
	bucket *storage.BucketHandle
	prefix string
}

// NewFS constructs an FS that writes to the provided bucket, with
// every object name starting with prefix. opts configure the client,
// typically with credentials.
func NewFS(ctx context.Context, bucketName, prefix string, opts ...option.ClientOption) (fs.FS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "storage.NewClient")
	}
	return &impl{client.Bucket(bucketName), strings.Trim(prefix, "/")}, nil
}

// ParseURL splits a gs://bucket/prefix URL. ok is false if u is not a
// Cloud Storage URL.
func ParseURL(u string) (bucket, prefix string, ok bool) {
	rest, ok := strings.CutPrefix(u, "gs://")
	if !ok {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", false
	}
	return bucket, strings.Trim(prefix, "/"), true
}

// NewWriter returns a Writer for the object name under fs's prefix.
func (fs *impl) NewWriter(ctx context.Context, name string, metadata map[string]string) (fs.Writer, error) {
	w := fs.bucket.Object(path.Join(fs.prefix, name)).NewWriter(ctx)
	w.Metadata = metadata
	return w, nil
}
