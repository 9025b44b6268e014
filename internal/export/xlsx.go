package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
)

// SheetName is the worksheet holding exported businesses.
const SheetName = "Businesses"

var headers = []interface{}{
	"Name", "Address", "City", "Rating", "Phone", "Phone (E.164)", "Website", "Website URL",
	"Place ID", "Latitude", "Longitude", "Logo", "Image One", "Image Two", "Image Three",
	"Twitter", "Facebook", "Instagram",
}

// WriteBusinesses renders businesses as a single sheet workbook to w, one row
// per record in the given order.
func WriteBusinesses(w io.Writer, businesses []entity.Business) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, b := range businesses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, businessRow(b)); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func businessRow(b entity.Business) []interface{} {
	var lat, lng interface{} = "", ""
	if b.Location != nil {
		lat, lng = b.Location.Lat, b.Location.Lon
	}
	return []interface{}{
		b.Name, b.Address, b.City, b.Rating, b.Phone, b.PhoneE164, b.Website, b.WebsiteURL,
		b.PlaceID, lat, lng, b.Logo, b.ImageOne, b.ImageTwo, b.ImageThree,
		b.Twitter, b.Facebook, b.Instagram,
	}
}
