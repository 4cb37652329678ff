package service

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/maheshrc27/listing-api/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStore struct {
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeObjectStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, params)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestStorage() (*storageService, *fakeObjectStore) {
	store := &fakeObjectStore{}
	return &storageService{
		config: cfg.Storage{
			AccountID:       "acc",
			ManualBucket:    "manual-uploads",
			AIBucket:        "ai-generated-content",
			ManualPublicURL: "https://media.example.com",
		},
		client: store,
	}, store
}

func TestStorageUpload(t *testing.T) {
	s, store := newTestStorage()

	url, err := s.Upload(context.Background(), "post-1/abc-front.jpg", []byte("data"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/post-1/abc-front.jpg", url)

	require.Len(t, store.puts, 1)
	assert.Equal(t, "manual-uploads", aws.ToString(store.puts[0].Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(store.puts[0].ContentType))
}

func TestStorageKeyFromURL(t *testing.T) {
	s, _ := newTestStorage()

	bucket, key, ok := s.KeyFromURL("https://media.example.com/post-1/a.jpg")
	assert.True(t, ok)
	assert.Equal(t, "manual-uploads", bucket)
	assert.Equal(t, "post-1/a.jpg", key)

	bucket, key, ok = s.KeyFromURL("https://acc.r2.cloudflarestorage.com/ai-generated-content/post-1/render.png")
	assert.True(t, ok)
	assert.Equal(t, "ai-generated-content", bucket)
	assert.Equal(t, "post-1/render.png", key)

	_, _, ok = s.KeyFromURL("https://elsewhere.example.com/a.jpg")
	assert.False(t, ok)
}

func TestStorageDeleteSkipsExternalURLs(t *testing.T) {
	s, store := newTestStorage()

	require.NoError(t, s.Delete(context.Background(), "https://elsewhere.example.com/a.jpg"))
	assert.Empty(t, store.deletes)

	require.NoError(t, s.Delete(context.Background(), "https://media.example.com/post-1/a.jpg"))
	require.Len(t, store.deletes, 1)
	assert.Equal(t, "post-1/a.jpg", aws.ToString(store.deletes[0].Key))
}
