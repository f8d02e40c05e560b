package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/blog-platform-backend/errs"
)

type fakeObjectAPI struct {
	mu      sync.Mutex
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	deletes []*s3.DeleteObjectInput
	putErr  error
	delErr  error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return nil, f.delErr
	}
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestPublicBaseURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://media.example.com",
		publicBaseURL(S3Options{Bucket: "b", Region: "eu-west-1", PublicBaseURL: "https://media.example.com/"}))
	assert.Equal(t, "http://localhost:9000/b",
		publicBaseURL(S3Options{Bucket: "b", Endpoint: "http://localhost:9000/"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com",
		publicBaseURL(S3Options{Bucket: "b", Region: "eu-west-1"}))
}

func TestS3Store_PutAndDelete(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newS3Store(api, S3Options{Bucket: "blogs", Region: "us-east-1"})

	url, err := store.Put(context.Background(), "blog-images/cat-01.png", []byte("png"), contentTypePNG)
	require.NoError(t, err)
	assert.Equal(t, "https://blogs.s3.us-east-1.amazonaws.com/blog-images/cat-01.png", url)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "blogs", *api.puts[0].Bucket)
	assert.Equal(t, "blog-images/cat-01.png", *api.puts[0].Key)
	assert.Equal(t, contentTypePNG, *api.puts[0].ContentType)
	assert.Equal(t, []byte("png"), api.bodies[0])

	require.NoError(t, store.Delete(context.Background(), url))
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "blog-images/cat-01.png", *api.deletes[0].Key)
}

func TestS3Store_DeleteForeignURL(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	store := newS3Store(api, S3Options{Bucket: "blogs", Region: "us-east-1"})

	err := store.Delete(context.Background(), "https://res.cloudinary.com/x/image/upload/cat.png")
	assert.ErrorIs(t, err, ErrForeignURL)
	assert.Empty(t, api.deletes)
}

func TestS3Store_PutError(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{putErr: errors.New("AccessDenied")}
	store := newS3Store(api, S3Options{Bucket: "blogs", Region: "us-east-1"})

	_, err := store.Put(context.Background(), "k.png", []byte("x"), contentTypePNG)
	assert.ErrorContains(t, err, "AccessDenied")
}

func TestDiskStore_PutDelete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:8080/")
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "blog-images/a.png", []byte("data"), contentTypePNG)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/blog-images/a.png", url)

	got, err := os.ReadFile(filepath.Join(dir, "blog-images", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	require.NoError(t, store.Delete(context.Background(), url))
	_, err = os.Stat(filepath.Join(dir, "blog-images", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(context.Background(), url))
}

func TestDiskStore_RejectsEscapingKeys(t *testing.T) {
	t.Parallel()

	store, err := NewDiskStore(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)

	for _, key := range []string{"../evil.png", "a/../../evil.png", "", "/abs.png"} {
		_, err := store.Put(context.Background(), key, []byte("x"), contentTypePNG)
		assert.Error(t, err, "key %q", key)
	}

	err = store.Delete(context.Background(), "http://localhost:8080/uploads/../secret")
	assert.Error(t, err)

	err = store.Delete(context.Background(), "http://elsewhere/uploads/a.png")
	assert.ErrorIs(t, err, ErrForeignURL)
}

func TestUploader_Upload(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	up := NewUploader(newS3Store(api, S3Options{Bucket: "b", PublicBaseURL: "https://cdn"}), "blog-images")

	url, err := up.Upload(context.Background(), bytes.NewReader(encodeSample(t, "jpeg")), "holiday.jpg")
	require.NoError(t, err)
	assert.Regexp(t, `^https://cdn/blog-images/holiday-[0-9a-z]{26}\.png$`, url)

	require.Len(t, api.bodies, 1)
	_, err = ConvertToPNG(api.bodies[0])
	assert.NoError(t, err, "stored object must be a png")
}

func TestUploader_UndecodableIsBadRequest(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{}
	up := NewUploader(newS3Store(api, S3Options{Bucket: "b"}), "blog-images")

	_, err := up.Upload(context.Background(), bytes.NewReader([]byte("%PDF-1.4")), "doc.pdf")
	require.Error(t, err)

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.ErrorIs(t, err, errs.ErrUpload)
	assert.Empty(t, api.puts)
}

func TestUploader_ProviderFailureIsBadGateway(t *testing.T) {
	t.Parallel()

	api := &fakeObjectAPI{putErr: errors.New("SlowDown")}
	up := NewUploader(newS3Store(api, S3Options{Bucket: "b"}), "blog-images")

	_, err := up.Upload(context.Background(), bytes.NewReader(encodeSample(t, "png")), "a.png")
	require.Error(t, err)

	var apiErr *errs.ApiErr
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.ErrorIs(t, err, errs.ErrUpload)
}
