package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 answers just enough of the S3 API for BucketExists and a
// single-part PutObject.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/rbi-reports":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/rbi-reports/"):
		b, _ := io.ReadAll(r.Body)
		key := strings.TrimPrefix(r.URL.Path, "/rbi-reports/")
		f.objects[key] = string(b)
		f.types[key] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestUploadReturnsObjectURL(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	ctx := context.Background()
	store, err := New(ctx, strings.TrimPrefix(srv.URL, "http://"), "us-east-1", "rbi-reports", "minio", "minio123", false)
	require.NoError(t, err)
	require.NoError(t, store.Ping(ctx))

	body := "equipment_tag\nV-101\n"
	url, err := store.Upload(ctx, "reports/export.csv", "text/csv", strings.NewReader(body), int64(len(body)))
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/rbi-reports/reports/export.csv", url)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, "text/csv", fake.types["reports/export.csv"])
	assert.Contains(t, fake.objects["reports/export.csv"], "V-101")
}
