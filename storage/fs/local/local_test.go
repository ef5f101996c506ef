// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFS(dir)

	w, err := fs.NewWriter(ctx, "charts/grid.svg", map[string]string{"format": "svg"})
	require.NoError(t, err)
	_, err = io.WriteString(w, "<svg/>")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(filepath.Join(dir, "charts", "grid.svg"))
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestCloseWithError(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fs := NewFS(dir)

	w, err := fs.NewWriter(ctx, "grid.png", nil)
	require.NoError(t, err)
	_, err = io.WriteString(w, "partial")
	require.NoError(t, err)
	require.NoError(t, w.CloseWithError(errors.New("render failed")))

	_, err = os.Stat(filepath.Join(dir, "grid.png"))
	assert.True(t, os.IsNotExist(err))
}
