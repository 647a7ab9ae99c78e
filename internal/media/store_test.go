package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put       *s3.PutObjectInput
	deleted   *s3.DeleteObjectInput
	deleteErr error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.put = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = in
	return &s3.DeleteObjectOutput{}, f.deleteErr
}

func stubS3(t *testing.T, fake *fakeS3) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}
	return &opts
}

func TestS3Store_PutDeleteURL(t *testing.T) {
	fake := &fakeS3{}
	opts := stubS3(t, fake)

	s, err := NewS3Store(context.Background(), S3Config{
		Bucket: "media", Region: "eu-west-1", Endpoint: "http://127.0.0.1:9000/",
		AccessKey: "minio", SecretKey: "minio123",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000/", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	require.NoError(t, s.Put(context.Background(), "products/k.png", strings.NewReader("x"), 1, "image/png"))
	assert.Equal(t, "media", aws.ToString(fake.put.Bucket))
	assert.Equal(t, "products/k.png", aws.ToString(fake.put.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.put.ContentType))

	url := s.URL("products/k.png")
	assert.Equal(t, "http://127.0.0.1:9000/media/products/k.png", url)
	key, ok := s.Key(url + "?X-Amz-Signature=abc")
	require.True(t, ok)
	assert.Equal(t, "products/k.png", key)

	require.NoError(t, s.Delete(context.Background(), key))
	assert.Equal(t, "products/k.png", aws.ToString(fake.deleted.Key))

	fake.deleteErr = &types.NoSuchKey{}
	assert.ErrorIs(t, s.Delete(context.Background(), key), ErrObjectNotFound)
}

func TestS3Store_LoadConfigError(t *testing.T) {
	stubS3(t, &fakeS3{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err := NewS3Store(context.Background(), S3Config{Bucket: "media", Region: "eu-west-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load-fail")
}

func TestS3Store_DefaultPublicURL(t *testing.T) {
	stubS3(t, &fakeS3{})
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}

	s, err := NewS3Store(context.Background(), S3Config{Bucket: "media", Region: "eu-west-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com/a/b.png", s.URL("a/b.png"))
}

func TestDiskStore(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "blogs/a.png", strings.NewReader("img"), 3, "image/png"))
	b, err := os.ReadFile(filepath.Join(dir, "blogs", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(b))

	url := s.URL("blogs/a.png")
	assert.Equal(t, "http://localhost:8080/uploads/blogs/a.png", url)
	key, ok := s.Key(url)
	require.True(t, ok)
	assert.Equal(t, "blogs/a.png", key)

	require.NoError(t, s.Delete(ctx, key))
	assert.ErrorIs(t, s.Delete(ctx, key), ErrObjectNotFound)

	assert.Error(t, s.Put(ctx, "../escape.png", strings.NewReader("x"), 1, "image/png"))
}
