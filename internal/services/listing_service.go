package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tradelink/internal/apperrors"
	"tradelink/internal/models"
	"tradelink/internal/repositories"
	"tradelink/internal/storage"
	"tradelink/pkg/cache"
	"tradelink/pkg/logger"
	"tradelink/pkg/metrics"
)

const listingTypeKeyPrefix = "listings:type:"

// EventPublisher delivers listing events to the message bus.
type EventPublisher interface {
	Publish(routingKey string, payload interface{}) error
}

// ListingFields carries client-supplied listing values. A nil field was not supplied.
type ListingFields struct {
	Name         *string
	CategoryType *models.CategoryType
	Category     *string
	Price        *float64
	Stock        *int
	Description  *string
}

// ListingService handles business logic related to listings.
type ListingService struct {
	repo      repositories.ListingRepository
	images    storage.ImageStore
	cache     cache.Cache
	cacheTTL  time.Duration
	publisher EventPublisher
	log       logger.Logger
	now       func() time.Time
}

// NewListingService creates a new ListingService. publisher may be nil.
func NewListingService(repo repositories.ListingRepository, images storage.ImageStore, c cache.Cache, cacheTTL time.Duration, publisher EventPublisher, log logger.Logger) *ListingService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ListingService{
		repo:      repo,
		images:    images,
		cache:     c,
		cacheTTL:  cacheTTL,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Create validates fields and persists a new listing owned by ownerID.
func (s *ListingService) Create(ctx context.Context, ownerID string, fields ListingFields, image *storage.Upload) (*models.Listing, error) {
	if isBlank(fields.Name) || fields.CategoryType == nil || *fields.CategoryType == "" || isBlank(fields.Category) || fields.Price == nil {
		return nil, apperrors.Validation("Name, categoryType, category, and price are required")
	}
	if !fields.CategoryType.Valid() {
		return nil, apperrors.Validation("categoryType must be product or service")
	}
	if *fields.Price < 0 {
		return nil, apperrors.Validation("Price must be a non-negative number")
	}
	if *fields.CategoryType == models.CategoryProduct {
		if fields.Stock == nil {
			return nil, apperrors.Validation("Stock is required for products")
		}
		if *fields.Stock < 0 {
			return nil, apperrors.Validation("Stock must be a non-negative integer")
		}
	}
	if image == nil {
		return nil, apperrors.Validation("Image is required")
	}

	ref, err := saveImage(s.images, storage.ProductImages, *image)
	if err != nil {
		return nil, err
	}

	listing := &models.Listing{
		SellerID:     ownerID,
		Name:         strings.TrimSpace(*fields.Name),
		CategoryType: *fields.CategoryType,
		Category:     strings.TrimSpace(*fields.Category),
		Price:        *fields.Price,
		Image:        ref,
	}
	if listing.CategoryType == models.CategoryProduct {
		listing.Stock = fields.Stock
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}

	err = s.repo.Create(ctx, listing)
	metrics.RecordListingOperation("create", err)
	if err != nil {
		discardImage(s.images, s.log, ref)
		return nil, apperrors.Internal("failed to create listing", err)
	}

	s.afterMutation(ctx, models.EventListingCreated, listing)
	return listing, nil
}

// ListMine returns every listing owned by ownerID, newest first.
func (s *ListingService) ListMine(ctx context.Context, ownerID string) ([]models.Listing, error) {
	listings, err := s.repo.ListBySeller(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch seller listings", err)
	}
	return listings, nil
}

// GetOne returns listing id if it belongs to requesterID.
func (s *ListingService) GetOne(ctx context.Context, id, requesterID string) (*models.Listing, error) {
	return s.owned(ctx, id, requesterID, "view")
}

// Update merges the supplied fields into listing id. Omitted fields keep their values.
// A new image replaces the old file only after the record points at it.
func (s *ListingService) Update(ctx context.Context, id, requesterID string, fields ListingFields, image *storage.Upload) (*models.Listing, error) {
	listing, err := s.owned(ctx, id, requesterID, "update")
	if err != nil {
		return nil, err
	}

	if fields.CategoryType != nil && *fields.CategoryType != "" {
		if !fields.CategoryType.Valid() {
			return nil, apperrors.Validation("categoryType must be product or service")
		}
		listing.CategoryType = *fields.CategoryType
	}
	if !isBlank(fields.Name) {
		listing.Name = strings.TrimSpace(*fields.Name)
	}
	if !isBlank(fields.Category) {
		listing.Category = strings.TrimSpace(*fields.Category)
	}
	if fields.Price != nil {
		if *fields.Price < 0 {
			return nil, apperrors.Validation("Price must be a non-negative number")
		}
		listing.Price = *fields.Price
	}
	if fields.Description != nil {
		listing.Description = *fields.Description
	}

	if listing.CategoryType == models.CategoryProduct {
		if fields.Stock != nil {
			if *fields.Stock < 0 {
				return nil, apperrors.Validation("Stock must be a non-negative integer")
			}
			listing.Stock = fields.Stock
		}
	} else {
		listing.Stock = nil
	}

	oldImage := listing.Image
	if image != nil {
		ref, err := saveImage(s.images, storage.ProductImages, *image)
		if err != nil {
			return nil, err
		}
		listing.Image = ref
	}

	err = s.repo.Update(ctx, listing)
	metrics.RecordListingOperation("update", err)
	if err != nil {
		if image != nil {
			discardImage(s.images, s.log, listing.Image)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Listing not found")
		}
		return nil, apperrors.Internal("failed to update listing", err)
	}
	if image != nil {
		discardImage(s.images, s.log, oldImage)
	}

	s.afterMutation(ctx, models.EventListingUpdated, listing)
	return listing, nil
}

// Delete removes listing id and its image.
func (s *ListingService) Delete(ctx context.Context, id, requesterID string) error {
	listing, err := s.owned(ctx, id, requesterID, "delete")
	if err != nil {
		return err
	}
	return s.remove(ctx, listing)
}

// DeleteAllBySeller removes every listing of sellerID together with the images.
func (s *ListingService) DeleteAllBySeller(ctx context.Context, sellerID string) error {
	listings, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return apperrors.Internal("failed to fetch seller listings", err)
	}
	for i := range listings {
		if err := s.remove(ctx, &listings[i]); err != nil && apperrors.KindOf(err) != apperrors.KindNotFound {
			return err
		}
	}
	return nil
}

// ListByType returns all listings of categoryType, newest first, through the cache.
func (s *ListingService) ListByType(ctx context.Context, categoryType models.CategoryType) ([]models.Listing, error) {
	if !categoryType.Valid() {
		return nil, apperrors.Validation("Invalid type. Must be product or service")
	}

	key := listingTypeKeyPrefix + string(categoryType)
	var listings []models.Listing
	err := s.cache.Get(ctx, key, &listings)
	if err == nil {
		metrics.RecordCacheHit()
		return listings, nil
	}
	metrics.RecordCacheMiss()
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("listing cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	listings, err = s.repo.ListByCategoryType(ctx, categoryType)
	if err != nil {
		return nil, apperrors.Internal("failed to fetch listings", err)
	}
	if err := s.cache.Set(ctx, key, listings, s.cacheTTL); err != nil {
		s.log.Warn("listing cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return listings, nil
}

// owned fetches listing id and checks that requesterID owns it.
func (s *ListingService) owned(ctx context.Context, id, requesterID, action string) (*models.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Listing not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to fetch listing", err)
	}
	if listing.SellerID != requesterID {
		return nil, apperrors.Forbidden("Not authorized to " + action + " this listing")
	}
	return listing, nil
}

func (s *ListingService) remove(ctx context.Context, listing *models.Listing) error {
	err := s.repo.Delete(ctx, listing.ID)
	metrics.RecordListingOperation("delete", err)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("Listing not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete listing", err)
	}
	discardImage(s.images, s.log, listing.Image)

	s.afterMutation(ctx, models.EventListingDeleted, listing)
	return nil
}

// afterMutation drops the cached type pages and publishes the event. Neither can fail the request.
func (s *ListingService) afterMutation(ctx context.Context, eventType string, listing *models.Listing) {
	keys := []string{
		listingTypeKeyPrefix + string(models.CategoryProduct),
		listingTypeKeyPrefix + string(models.CategoryService),
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("listing cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}

	if s.publisher == nil {
		return
	}
	event := models.ListingEvent{
		Type:         eventType,
		ListingID:    listing.ID,
		SellerID:     listing.SellerID,
		CategoryType: listing.CategoryType,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		s.log.Warn("failed to publish listing event", map[string]interface{}{
			"event":      eventType,
			"listing_id": listing.ID,
			"error":      err.Error(),
		})
	}
}

func isBlank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}
