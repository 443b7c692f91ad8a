package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBucket struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func (b *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = data
	b.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestUploadRecipeImage(t *testing.T) {
	recipes := newRecipeService(t)
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	images := service.NewImageService(bucket, "drink-photos", "https://cdn.example.com/", recipes, zap.NewNop())
	ctx := context.Background()

	created, err := recipes.InsertRecipe(ctx, mojito())
	require.NoError(t, err)

	updated, err := images.UploadRecipeImage(ctx, created.ID, pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.ImageURL, "https://cdn.example.com/recipe-images/"+created.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.ImageURL, ".png"))

	require.Len(t, bucket.objects, 1)
	for key, data := range bucket.objects {
		assert.Equal(t, pngHeader, data)
		assert.Equal(t, "image/png", bucket.types[key])
		assert.Equal(t, "https://cdn.example.com/"+key, updated.ImageURL)
	}

	stored, err := recipes.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.ImageURL, stored.ImageURL)
}

func TestUploadRecipeImageRejectsBadInput(t *testing.T) {
	recipes := newRecipeService(t)
	bucket := &fakeBucket{objects: map[string][]byte{}, types: map[string]string{}}
	images := service.NewImageService(bucket, "drink-photos", "", recipes, zap.NewNop())
	ctx := context.Background()

	created, err := recipes.InsertRecipe(ctx, mojito())
	require.NoError(t, err)

	_, err = images.UploadRecipeImage(ctx, created.ID, []byte("plain text, not a photo"))
	assert.ErrorIs(t, err, service.ErrUnsupportedImage)

	_, err = images.UploadRecipeImage(ctx, created.ID, nil)
	assert.ErrorIs(t, err, service.ErrUnsupportedImage)

	_, err = images.UploadRecipeImage(ctx, "missing", pngHeader)
	assert.ErrorIs(t, err, remote.ErrNotFound)
	assert.Empty(t, bucket.objects)

	bucket.err = errors.New("access denied")
	_, err = images.UploadRecipeImage(ctx, created.ID, pngHeader)
	assert.ErrorContains(t, err, "access denied")
}
