package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"OrandaBot/internal/models"
)

func sampleOffers() []models.Offer {
	created := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	return []models.Offer{
		{
			ID:        7,
			Creator:   models.Actor{ID: 1, Name: "@alice"},
			Category:  models.NewNullString("ОРЕНДА"),
			Street:    models.NewNullString("Grabova 12"),
			Rent:      models.NewNullString("350"),
			Photos:    []string{"a", "b"},
			Status:    models.StatusReserved,
			GroupPost: &models.GroupPost{ChatID: -100, MessageID: 55},
			CreatedAt: created,
			UpdatedAt: created.Add(time.Hour),
		},
		{ID: 8, Creator: models.Actor{ID: 2, Name: "Ivan"}, CreatedAt: created, UpdatedAt: created},
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatXLSX {
		t.Fatalf("default format = %q, %v", f, err)
	}
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Fatalf("csv format = %q, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatal("expected error for pdf")
	}
}

func TestWriteCSV(t *testing.T) {
	loc, _ := time.LoadLocation("Europe/Bratislava")
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleOffers(), loc); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	headers := Headers()
	if len(rows[0]) != len(headers) || len(headers) != 2+len(models.Fields)+5 {
		t.Fatalf("header width = %d", len(rows[0]))
	}
	first := rows[1]
	if first[0] != "0007" || first[1] != "Резерв" {
		t.Fatalf("first row = %v", first)
	}
	if first[2] != "ОРЕНДА" || first[8] != "350" {
		t.Fatalf("field columns = %v", first)
	}
	photosCol := 2 + len(models.Fields)
	if first[photosCol] != "2" || first[photosCol+1] != "@alice" || first[photosCol+2] != "55" {
		t.Fatalf("tail columns = %v", first[photosCol:])
	}
	if first[photosCol+3] != "01.05.2024 10:30" {
		t.Fatalf("created = %q, want local time", first[photosCol+3])
	}
	if rows[2][1] != unpublishedLabel || rows[2][photosCol+2] != "" {
		t.Fatalf("unpublished row = %v", rows[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleOffers(), time.UTC); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "Номер" || rows[1][0] != "0007" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveFile(dir, FormatCSV, sampleOffers(), nil)
	if err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("export file missing: %v", err)
	}
}
