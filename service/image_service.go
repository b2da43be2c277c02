// service/image_service.go
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aniketsuryawanshi1/recipe-hub-api/config"
	"github.com/aniketsuryawanshi1/recipe-hub-api/dao"
	recipe_errors "github.com/aniketsuryawanshi1/recipe-hub-api/errors"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

// ImageEnqueuer hands a stored image to the background resize queue.
type ImageEnqueuer interface {
	Enqueue(imageID, path string) error
}

type ImageService interface {
	UploadImage(ctx context.Context, image *model.RecipeImage, src io.Reader, filename string) error
	GetImage(ctx context.Context, imageID string) (*model.RecipeImage, error)
	DeleteImage(ctx context.Context, image *model.RecipeImage) error
}

type imageService struct {
	imageDAO   *dao.ImageDAO
	bus        *util.EventBus
	validation *util.ValidationUtil
	enqueuer   ImageEnqueuer
}

func NewImageService(imageDAO *dao.ImageDAO, bus *util.EventBus,
	validation *util.ValidationUtil, enqueuer ImageEnqueuer) ImageService {
	return &imageService{
		imageDAO:   imageDAO,
		bus:        bus,
		validation: validation,
		enqueuer:   enqueuer,
	}
}

// UploadImage stores the original file under the media directory, records
// the image row and queues the background resize. The resize failing or
// retrying never affects the upload response.
func (s *imageService) UploadImage(ctx context.Context, image *model.RecipeImage, src io.Reader, filename string) error {
	if image.ID == "" {
		image.ID = uuid.NewString()
	}
	image.Path = filepath.Join(mediaDir(), "recipes", image.RecipeID,
		image.ID+filepath.Ext(filename))

	if err := s.validation.ValidateImage(*image); err != nil {
		return fmt.Errorf("%w: %v", recipe_errors.ErrInvalidRecipeData, err)
	}

	if err := writeFile(image.Path, src); err != nil {
		return fmt.Errorf("%w: failed to store image: %v", recipe_errors.ErrInternalServer, err)
	}

	if err := s.imageDAO.CreateImage(ctx, image); err != nil {
		if rmErr := os.Remove(image.Path); rmErr != nil {
			logger.Warn("Failed to remove orphaned image file",
				zap.String("path", image.Path), zap.Error(rmErr))
		}
		return err
	}

	if err := s.enqueuer.Enqueue(image.ID, image.Path); err != nil {
		logger.Warn("Failed to queue image processing",
			zap.String("imageID", image.ID), zap.Error(err))
	}

	s.bus.Publish(ctx, util.ImageUploaded, util.ImageEvent{
		ImageID:  image.ID,
		RecipeID: image.RecipeID,
	})
	return nil
}

func (s *imageService) GetImage(ctx context.Context, imageID string) (*model.RecipeImage, error) {
	return s.imageDAO.GetImage(ctx, imageID)
}

func (s *imageService) DeleteImage(ctx context.Context, image *model.RecipeImage) error {
	if err := s.imageDAO.DeleteImage(ctx, image.ID); err != nil {
		return err
	}
	if err := os.Remove(image.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove image file",
			zap.String("path", image.Path), zap.Error(err))
	}
	return nil
}

func mediaDir() string {
	dir := config.GetString("media.root")
	if dir == "" {
		dir = "media"
	}
	return dir
}

func writeFile(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
