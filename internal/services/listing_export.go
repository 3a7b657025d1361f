package services

import (
	"context"
	"fmt"

	"tradelink/internal/apperrors"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

var exportHeader = []interface{}{"Name", "Category", "Price", "Description", "Category Type", "Stock", "Image", "Created At"}

// ExportMine renders the caller's listings, newest first, as an xlsx workbook.
// The first four columns follow the bulk upload layout.
func (s *ListingService) ExportMine(ctx context.Context, ownerID string) ([]byte, error) {
	listings, err := s.ListMine(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, apperrors.Internal("failed to write export header", err)
	}
	for i, l := range listings {
		var stock interface{}
		if l.Stock != nil {
			stock = *l.Stock
		}
		row := []interface{}{
			l.Name,
			l.Category,
			l.Price,
			l.Description,
			string(l.CategoryType),
			stock,
			l.Image,
			l.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.Internal("failed to address export row", err)
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, apperrors.Internal(fmt.Sprintf("failed to write export row %d", i+2), err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.Internal("failed to render export", err)
	}
	return buf.Bytes(), nil
}
