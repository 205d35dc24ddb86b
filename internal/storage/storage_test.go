package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/navipay/port-requests/internal/apperr"
	"github.com/navipay/port-requests/internal/model"
)

var (
	pngBytes = append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 64)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF")
)

func TestMemoryStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	key, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(pngBytes), int64(len(pngBytes)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".png"), "key %s should carry the sniffed extension", key)

	obj, err := store.Get(ctx, model.AttachmentProof, key)
	require.NoError(t, err)
	defer obj.Reader.Close()

	assert.Equal(t, "image/png", obj.ContentType)
	data, err := io.ReadAll(obj.Reader)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	require.NoError(t, store.Delete(ctx, model.AttachmentProof, key))
	_, err = store.Get(ctx, model.AttachmentProof, key)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryStore_KindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	key, err := store.Put(ctx, model.AttachmentInvoice, bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	require.NoError(t, err)

	_, err = store.Get(ctx, model.AttachmentProof, key)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	obj, err := store.Get(ctx, model.AttachmentInvoice, key)
	require.NoError(t, err)
	obj.Reader.Close()
	assert.Equal(t, "application/pdf", obj.ContentType)
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("bad: disallowed content type", func(t *testing.T) {
		payload := []byte("#!/bin/sh\necho hi\n")
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(payload), int64(len(payload)))
		assert.ErrorIs(t, err, apperr.ErrUnsupportedFile)
	})

	t.Run("bad: content sniffing beats a fake extension", func(t *testing.T) {
		// Plain text is rejected no matter what the upload was named;
		// only the bytes matter.
		payload := []byte("<html><body>not an image</body></html>")
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(payload), int64(len(payload)))
		assert.ErrorIs(t, err, apperr.ErrUnsupportedFile)
	})

	t.Run("bad: over the size ceiling", func(t *testing.T) {
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(pngBytes), MaxFileSize+1)
		assert.ErrorIs(t, err, apperr.ErrUnsupportedFile)
	})

	t.Run("bad: declared size lies under a too-large payload", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), make([]byte, MaxFileSize)...)
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(big), 100)
		assert.ErrorIs(t, err, apperr.ErrUnsupportedFile)
	})

	t.Run("bad: empty file", func(t *testing.T) {
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(nil), 0)
		assert.ErrorIs(t, err, apperr.ErrUnsupportedFile)
	})

	t.Run("happy: jpeg and gif pass", func(t *testing.T) {
		jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 32)...)
		_, err := store.Put(ctx, model.AttachmentProof, bytes.NewReader(jpeg), int64(len(jpeg)))
		assert.NoError(t, err)

		gif := append([]byte("GIF89a"), make([]byte, 32)...)
		_, err = store.Put(ctx, model.AttachmentProof, bytes.NewReader(gif), int64(len(gif)))
		assert.NoError(t, err)
	})
}
