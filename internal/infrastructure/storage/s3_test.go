package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"kudos/backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

type fakePresigner struct {
	in      *s3.GetObjectInput
	expires bool
	err     error
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.in = in
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires == PresignExpiry
	if f.err != nil {
		return nil, f.err
	}
	return &v4.PresignedHTTPRequest{URL: "https://s3.test/" + aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)}, nil
}

func TestPut(t *testing.T) {
	putter := &fakePutter{}
	store := &S3PictureStore{bucket: "pics", client: putter}

	require.NoError(t, store.Put(context.Background(), "profile-pictures/p/a.png", "image/png", []byte("png-bytes")))
	assert.Equal(t, "pics", aws.ToString(putter.in.Bucket))
	assert.Equal(t, "profile-pictures/p/a.png", aws.ToString(putter.in.Key))
	assert.Equal(t, "image/png", aws.ToString(putter.in.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(putter.in.ContentLength))
	assert.Equal(t, []byte("png-bytes"), putter.body)
}

func TestPut_Error(t *testing.T) {
	store := &S3PictureStore{bucket: "pics", client: &fakePutter{err: errors.New("denied")}}

	err := store.Put(context.Background(), "k", "image/png", nil)
	assert.EqualError(t, err, "put object k: denied")
}

func TestURL(t *testing.T) {
	presigner := &fakePresigner{}
	store := &S3PictureStore{bucket: "pics", presigner: presigner}

	url, err := store.URL(context.Background(), "a/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/pics/a/b.jpg", url)
	assert.True(t, presigner.expires)
}

func TestURL_Error(t *testing.T) {
	store := &S3PictureStore{bucket: "pics", presigner: &fakePresigner{err: errors.New("no creds")}}

	_, err := store.URL(context.Background(), "k")
	assert.ErrorContains(t, err, "no creds")
}

func TestNewS3PictureStore_AppliesSettings(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(_ context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}
	var opts s3.Options
	newS3ClientFromConfig = func(_ aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	store, err := NewS3PictureStore(context.Background(), config.Storage{
		Bucket:    "pics",
		Region:    "eu-west-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.Equal(t, "pics", store.bucket)
	assert.Equal(t, "eu-west-1", lo.Region)
	assert.NotNil(t, lo.Credentials)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3PictureStore_Errors(t *testing.T) {
	_, err := NewS3PictureStore(context.Background(), config.Storage{})
	assert.EqualError(t, err, "s3 bucket is required")

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}

	_, err = NewS3PictureStore(context.Background(), config.Storage{Bucket: "pics"})
	assert.ErrorContains(t, err, "load aws config: bad profile")
}
