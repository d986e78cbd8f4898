package printing

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zantech/instantorder/internal/domain/shared"
)

func domainCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func newTestStorage(t *testing.T) *FileSystemStorage {
	t.Helper()
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{BasePath: filepath.Join(t.TempDir(), "exports")})
	require.NoError(t, err)
	return s
}

func TestFileSystemStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	key := "invoices/2024/03/invoice-INV-1.pdf"

	stored, err := s.Put(ctx, key, []byte("%PDF-1.3 test"), PDFContentType)
	require.NoError(t, err)
	assert.Equal(t, key, stored.Key)
	assert.Equal(t, int64(13), stored.Size)
	assert.Equal(t, filepath.Join(s.BasePath(), "invoices", "2024", "03", "invoice-INV-1.pdf"), stored.Location)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 test", string(data))

	_, err = s.Put(ctx, key, []byte("%PDF-1.3 again"), PDFContentType)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Dir(stored.Location))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	assert.NoError(t, s.Delete(ctx, key), "deleting a missing document is not an error")
}

func TestFileSystemStorage_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	for _, key := range []string{"", "../escape.pdf", "invoices/../../x.pdf", "/etc/passwd", `..\x.pdf`} {
		t.Run(key, func(t *testing.T) {
			_, err := s.Put(ctx, key, []byte("x"), PDFContentType)
			assert.Equal(t, shared.CodeStorageFailure, domainCode(err))

			_, err = s.Get(ctx, key)
			assert.Equal(t, shared.CodeStorageFailure, domainCode(err))
		})
	}
}

func TestFileSystemStorage_PutValidation(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Put(context.Background(), "a.pdf", nil, PDFContentType)
	assert.Equal(t, shared.CodeStorageFailure, domainCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "a.pdf", []byte("x"), PDFContentType)
	assert.True(t, shared.IsRetryable(err))
}

func TestFileSystemStorage_Sweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	s, err := NewFileSystemStorage(&FileSystemStorageConfig{
		BasePath: t.TempDir(),
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	old, err := s.Put(ctx, "invoices/2024/01/invoice-old.pdf", []byte("old"), PDFContentType)
	require.NoError(t, err)
	fresh, err := s.Put(ctx, "invoices/2024/05/invoice-new.pdf", []byte("new"), PDFContentType)
	require.NoError(t, err)
	note := filepath.Join(s.BasePath(), "invoices", "2024", "01", "keep.txt")
	require.NoError(t, os.WriteFile(note, []byte("x"), 0o644))

	require.NoError(t, os.Chtimes(old.Location, now.AddDate(0, -2, 0), now.AddDate(0, -2, 0)))
	require.NoError(t, os.Chtimes(fresh.Location, now.AddDate(0, 0, -1), now.AddDate(0, 0, -1)))
	require.NoError(t, os.Chtimes(note, now.AddDate(-1, 0, 0), now.AddDate(-1, 0, 0)))

	deleted, err := s.Sweep(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoFileExists(t, old.Location)
	assert.FileExists(t, fresh.Location)
	assert.FileExists(t, note)
}
