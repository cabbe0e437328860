package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// well-known Azurite development account
const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

func newTestStore(t *testing.T) *AzureBlobStore {
	t.Helper()
	s, err := NewAzureBlobStore(azuriteConnString, zap.NewNop())
	require.NoError(t, err)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestNewAzureBlobStore_RequiresConnectionString(t *testing.T) {
	_, err := NewAzureBlobStore("", zap.NewNop())
	assert.Error(t, err)
}

func TestUploadURL(t *testing.T) {
	s := newTestStore(t)
	raw, expires, err := s.UploadURL(context.Background(), "animal-images", "a1/abc-front.jpg", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 10, 0, 0, time.UTC), expires)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/devstoreaccount1/animal-images/a1/abc-front.jpg"), u.Path)
	q := u.Query()
	assert.Equal(t, "cw", q.Get("sp"))
	assert.NotEmpty(t, q.Get("sig"))
	assert.Equal(t, "2024-03-01T11:55:00Z", q.Get("st"))
	assert.Equal(t, "2024-03-01T12:10:00Z", q.Get("se"))
}

func TestDownloadURL(t *testing.T) {
	s := newTestStore(t)
	raw, _, err := s.DownloadURL(context.Background(), "animal-documents", "a1/xyz-vet.pdf", 15*time.Minute)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "r", u.Query().Get("sp"))
	assert.NotEmpty(t, u.Query().Get("sig"))
}

func TestBlobURL_Unsigned(t *testing.T) {
	s := newTestStore(t)
	u, err := url.Parse(s.BlobURL("animal-images", "a1/abc-front.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:10000", u.Host)
	assert.Equal(t, "/devstoreaccount1/animal-images/a1/abc-front.jpg", u.Path)
	assert.Empty(t, u.RawQuery)
}
