package handlers

import (
	"strconv"
	"strings"

	"tradelink/internal/apperrors"
	"tradelink/internal/middleware"
	"tradelink/internal/models"
	"tradelink/internal/services"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service *services.ListingService
	gate    fiber.Handler
}

// NewListingHandler creates a new ListingHandler. gate authenticates protected routes.
func NewListingHandler(service *services.ListingService, gate fiber.Handler) *ListingHandler {
	return &ListingHandler{
		service: service,
		gate:    gate,
	}
}

// RegisterRoutes registers the listing routes. Only get-by-type is public.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	listingRoutes := router.Group("/listings")
	listingRoutes.Get("/get-by-type/:type", h.HandleListByType)

	sellerOnly := []fiber.Handler{h.gate, middleware.SellerOnly()}
	listingRoutes.Post("/upload", append(sellerOnly, h.HandleCreate)...)
	listingRoutes.Get("/my-products", append(sellerOnly, h.HandleListMine)...)
	listingRoutes.Get("/my-products/export", append(sellerOnly, h.HandleExportMine)...)
	listingRoutes.Get("/:id", append(sellerOnly, h.HandleGetOne)...)
	listingRoutes.Put("/:id", append(sellerOnly, h.HandleUpdate)...)
	listingRoutes.Delete("/:id", append(sellerOnly, h.HandleDelete)...)
}

// HandleCreate creates a listing from a multipart form carrying the image field.
func (h *ListingHandler) HandleCreate(c *fiber.Ctx) error {
	fields, err := listingFields(c)
	if err != nil {
		return err
	}
	image, closeImage, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closeImage()

	listing, err := h.service.Create(c.UserContext(), sellerID(c), fields, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Listing uploaded successfully",
		"listing": listing,
	})
}

func (h *ListingHandler) HandleListMine(c *fiber.Ctx) error {
	listings, err := h.service.ListMine(c.UserContext(), sellerID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(listings),
		"listings": listings,
	})
}

// HandleExportMine downloads the seller's listings as a spreadsheet.
func (h *ListingHandler) HandleExportMine(c *fiber.Ctx) error {
	data, err := h.service.ExportMine(c.UserContext(), sellerID(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment("my-listings.xlsx")
	return c.Send(data)
}

func (h *ListingHandler) HandleGetOne(c *fiber.Ctx) error {
	listing, err := h.service.GetOne(c.UserContext(), c.Params("id"), sellerID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"listing": listing,
	})
}

// HandleUpdate merges the supplied fields into the listing. An image field replaces the current image.
func (h *ListingHandler) HandleUpdate(c *fiber.Ctx) error {
	fields, err := listingFields(c)
	if err != nil {
		return err
	}
	image, closeImage, err := formImage(c, "image")
	if err != nil {
		return err
	}
	defer closeImage()

	listing, err := h.service.Update(c.UserContext(), c.Params("id"), sellerID(c), fields, image)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Listing updated successfully",
		"listing": listing,
	})
}

func (h *ListingHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id"), sellerID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Listing deleted successfully",
	})
}

// HandleListByType lists every seller's listings of one category type.
func (h *ListingHandler) HandleListByType(c *fiber.Ctx) error {
	listings, err := h.service.ListByType(c.UserContext(), models.CategoryType(strings.ToLower(c.Params("type"))))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(listings),
		"listings": listings,
	})
}

// listingRequest is the JSON form of a listing body.
type listingRequest struct {
	Name         *string              `json:"name"`
	CategoryType *models.CategoryType `json:"categoryType"`
	Category     *string              `json:"category"`
	Price        *float64             `json:"price"`
	Stock        *int                 `json:"stock"`
	Description  *string              `json:"description"`
}

// listingFields reads listing values from a JSON body or from form values.
// Empty form values count as not supplied.
func listingFields(c *fiber.Ctx) (services.ListingFields, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		var req listingRequest
		if err := c.BodyParser(&req); err != nil {
			return services.ListingFields{}, apperrors.Validation("Invalid request body")
		}
		if req.CategoryType != nil {
			t := models.CategoryType(strings.ToLower(strings.TrimSpace(string(*req.CategoryType))))
			req.CategoryType = &t
		}
		return services.ListingFields(req), nil
	}

	fields := services.ListingFields{
		Name:        formValue(c, "name"),
		Category:    formValue(c, "category"),
		Description: formValue(c, "description"),
	}
	if v := formValue(c, "categoryType"); v != nil {
		t := models.CategoryType(strings.ToLower(*v))
		fields.CategoryType = &t
	}
	if v := formValue(c, "price"); v != nil {
		price, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return services.ListingFields{}, apperrors.Validation("Price must be a number")
		}
		fields.Price = &price
	}
	if v := formValue(c, "stock"); v != nil && *v != "null" {
		stock, err := strconv.Atoi(*v)
		if err != nil {
			return services.ListingFields{}, apperrors.Validation("Stock must be an integer")
		}
		fields.Stock = &stock
	}
	return fields, nil
}

func formValue(c *fiber.Ctx, key string) *string {
	v := strings.TrimSpace(c.FormValue(key))
	if v == "" {
		return nil
	}
	return &v
}
