package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBucket is an in-memory S3 bucket speaking just enough of the wire
// protocol for path-style PutObject, GetObject, ListObjectsV2 and
// DeleteObject.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/staging/")
	switch {
	case r.Method == http.MethodGet && r.URL.Query().Has("list-type"):
		prefix := r.URL.Query().Get("prefix")
		var keys []string
		for k := range b.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)

		var sb strings.Builder
		sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
		sb.WriteString("<ListBucketResult><Name>staging</Name><IsTruncated>false</IsTruncated>")
		for _, k := range keys {
			sb.WriteString("<Contents><Key>" + k + "</Key></Contents>")
		}
		sb.WriteString("</ListBucketResult>")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, sb.String())
	case r.Method == http.MethodPut:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b.objects[key] = body
	case r.Method == http.MethodGet:
		body, ok := b.objects[key]
		if !ok {
			http.Error(w, "NoSuchKey", http.StatusNotFound)
			return
		}
		_, _ = w.Write(body)
	case r.Method == http.MethodDelete:
		delete(b.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
	}
}

func testStore(t *testing.T) ObjectStore {
	t.Helper()
	srv := httptest.NewServer(&fakeBucket{objects: map[string][]byte{}})
	t.Cleanup(srv.Close)

	cfg, err := awsConfig(context.Background(), S3Options{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) { o.UsePathStyle = true })
	return NewS3StoreWithClient(client, "staging")
}

func TestS3StoreObjectLifecycle(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "stage/a.csv", strings.NewReader("id\n1\n")))
	require.NoError(t, store.Upload(ctx, "stage/b.csv", strings.NewReader("id\n2\n")))
	require.NoError(t, store.Upload(ctx, "other/c.csv", strings.NewReader("id\n3\n")))

	body, err := store.Download(ctx, "stage/a.csv")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "id\n1\n", string(data))

	keys, err := store.List(ctx, "stage/")
	require.NoError(t, err)
	assert.Equal(t, []string{"stage/a.csv", "stage/b.csv"}, keys)

	require.NoError(t, store.Delete(ctx, "stage/a.csv"))

	keys, err = store.List(ctx, "stage/")
	require.NoError(t, err)
	assert.Equal(t, []string{"stage/b.csv"}, keys)

	_, err = store.Download(ctx, "stage/a.csv")
	assert.Error(t, err)
}
