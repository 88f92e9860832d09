package storage

import (
	"encoding/base64"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerRoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, expiresAt, err := signer.Sign("job-1", "prof1/roster.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	jobID, path, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, "prof1/roster.pdf", path)
}

func TestSignerRejectsTampering(t *testing.T) {
	signer := NewSigner("secret", time.Hour)
	token, _, err := signer.Sign("job-1", "prof1/roster.pdf")
	require.NoError(t, err)

	_, _, err = signer.Verify(token + "x")
	assert.Error(t, err)

	_, _, err = NewSigner("other", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestSignerRejectsExpired(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	// A correctly signed token whose expiry lies in the past.
	ts := strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte("prof1/roster.pdf"))
	token := strings.Join([]string{"job-1", ts, encodedPath, signer.sign("job-1", ts, encodedPath)}, ".")

	_, _, err := signer.Verify(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestReportStorageSaveAndOpen(t *testing.T) {
	store, err := NewReportStorage(t.TempDir())
	require.NoError(t, err)

	rel, err := store.Save("prof1/roster.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "prof1/roster.pdf", rel)

	file, err := store.Open(rel)
	require.NoError(t, err)
	require.NoError(t, file.Close())

	require.NoError(t, store.Delete(rel))
	_, err = store.Open(rel)
	assert.Error(t, err)
}

func TestReportStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewReportStorage(t.TempDir())
	require.NoError(t, err)

	for _, path := range []string{"", "/etc/passwd", "../outside.pdf", "prof1/../../outside.pdf"} {
		_, err := store.Save(path, []byte("x"))
		assert.Error(t, err, path)
		_, err = store.Open(path)
		assert.Error(t, err, path)
	}

	// A ".." that stays inside the base directory is fine.
	_, err = store.Save("prof1/../prof2/roster.pdf", []byte("%PDF-1.4"))
	assert.NoError(t, err)
}

func TestReportStorageCleanup(t *testing.T) {
	store, err := NewReportStorage(t.TempDir())
	require.NoError(t, err)
	_, err = store.Save("old.pdf", []byte("x"))
	require.NoError(t, err)

	deleted, err := store.CleanupOlderThan(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
