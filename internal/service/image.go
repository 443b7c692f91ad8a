package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/drinkbook/backend/internal/model"
	"go.uber.org/zap"
)

// MaxImageBytes caps a single recipe photo.
const MaxImageBytes = 5 << 20

// ErrUnsupportedImage is returned for uploads that are not jpeg, png or webp.
var ErrUnsupportedImage = errors.New("unsupported image type")

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ObjectPutter is the part of the S3 client the image service uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores recipe photos in a bucket and points recipes at them.
type ImageService struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	recipes *RecipeService
	logger  *zap.Logger
}

// NewImageService creates an ImageService. baseURL is the public prefix
// objects are served from; empty means the bucket's S3 website host.
func NewImageService(client ObjectPutter, bucket, baseURL string, recipes *RecipeService, logger *zap.Logger) *ImageService {
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &ImageService{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		recipes: recipes,
		logger:  logger,
	}
}

// UploadRecipeImage stores data and sets it as the recipe image.
func (s *ImageService) UploadRecipeImage(ctx context.Context, recipeID string, data []byte) (*model.Recipe, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedImage)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrUnsupportedImage, MaxImageBytes)
	}
	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	if _, err := s.recipes.GetRecipe(ctx, recipeID); err != nil {
		return nil, err
	}

	key := path.Join("recipe-images", recipeID, uuid.NewString()+ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	url := s.baseURL + "/" + key
	s.logger.Info("stored recipe image",
		zap.String("recipe_id", recipeID),
		zap.String("key", key),
		zap.Int("bytes", len(data)))

	return s.recipes.UpdateRecipe(ctx, recipeID, model.RecipePatch{ImageURL: &url})
}
