package export

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
)

func TestWriteBusinesses(t *testing.T) {
	businesses := []entity.Business{
		{Name: "Harbor Fish", Address: "9 Custom House Wharf, Portland, ME 04101", City: "Portland", Rating: "4.8",
			Phone: "(207) 775-0251", PhoneE164: "+12077750251", Location: &geo.Coordinate{Lat: 43.6567, Lon: -70.2489}},
		{Name: "Saco Bakery", Address: entity.NotAvailable, Rating: entity.NotAvailable},
	}

	buf := &bytes.Buffer{}
	if err := WriteBusinesses(buf, businesses); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !cmp.Equal(got, []string{SheetName}) {
		t.Fatalf("unexpected sheets: %v", got)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Name" || len(rows[0]) != len(headers) {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	want := []string{"Harbor Fish", "9 Custom House Wharf, Portland, ME 04101", "Portland", "4.8", "(207) 775-0251", "+12077750251"}
	if diff := cmp.Diff(want, rows[1][:6]); diff != "" {
		t.Fatalf("first row mismatch (-want +got):\n%s", diff)
	}
	if rows[1][9] != "43.6567" || rows[1][10] != "-70.2489" {
		t.Fatalf("expected coordinates, got %v %v", rows[1][9], rows[1][10])
	}
	if rows[2][0] != "Saco Bakery" || rows[2][1] != entity.NotAvailable {
		t.Fatalf("unexpected second row: %v", rows[2])
	}
}

func TestWriteBusinesses_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WriteBusinesses(buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %d", len(rows))
	}
}
