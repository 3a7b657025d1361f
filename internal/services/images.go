package services

import (
	"errors"

	"tradelink/internal/apperrors"
	"tradelink/internal/storage"
	"tradelink/pkg/logger"
	"tradelink/pkg/metrics"
)

func saveImage(images storage.ImageStore, dir string, upload storage.Upload) (string, error) {
	ref, err := images.Save(dir, upload)
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return "", apperrors.Validation(msgOnlyImages)
	}
	if err != nil {
		return "", apperrors.Internal("failed to store image", err)
	}
	return ref, nil
}

// discardImage removes ref, logging instead of failing.
func discardImage(images storage.ImageStore, log logger.Logger, ref string) {
	if err := images.Delete(ref); err != nil {
		metrics.RecordImageCleanupFailure()
		log.Warn("failed to remove image", map[string]interface{}{
			"image": ref,
			"error": err.Error(),
		})
	}
}
