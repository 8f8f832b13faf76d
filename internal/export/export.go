// Package export выгружает пропозиции в XLSX и CSV: одна строка на пропозицию.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"OrandaBot/internal/formatters"
	"OrandaBot/internal/models"
)

// Format - формат выгрузки.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat разбирает аргумент команды /export. Пустая строка - XLSX.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("неизвестный формат выгрузки '%s'", raw)
}

const (
	SheetName        = "Пропозиції"
	timeLayout       = "02.01.2006 15:04"
	unpublishedLabel = "Не опубліковано"
)

// Headers - заголовки колонок в порядке записи.
func Headers() []string {
	headers := []string{"Номер", "Статус"}
	for _, f := range models.Fields {
		headers = append(headers, f.Label)
	}
	return append(headers, "Фото", "Автор", "Повідомлення в групі", "Створено", "Оновлено")
}

func record(o models.Offer, loc *time.Location) []interface{} {
	status := unpublishedLabel
	if o.Published() {
		_, status = formatters.StatusLabel(o.Status)
	}
	row := []interface{}{o.Number(), status}
	for _, f := range models.Fields {
		row = append(row, o.Field(f.Key).ValueOr(""))
	}
	groupMsg := ""
	if o.GroupPost != nil {
		groupMsg = fmt.Sprintf("%d", o.GroupPost.MessageID)
	}
	return append(row,
		len(o.Photos),
		o.Creator.Name,
		groupMsg,
		o.CreatedAt.In(loc).Format(timeLayout),
		o.UpdatedAt.In(loc).Format(timeLayout),
	)
}

// WriteXLSX записывает книгу с одним листом.
func WriteXLSX(w io.Writer, offers []models.Offer, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("создание листа: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		log.Printf("WriteXLSX: Не удалось удалить стандартный лист: %v", err)
	}

	for i, header := range Headers() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetName, cell, header)
	}
	for r, o := range offers {
		for c, v := range record(o, loc) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(SheetName, cell, v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("запись xlsx: %w", err)
	}
	return nil
}

// WriteCSV записывает CSV с заголовком.
func WriteCSV(w io.Writer, offers []models.Offer, loc *time.Location) error {
	if loc == nil {
		loc = time.UTC
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return fmt.Errorf("запись заголовка csv: %w", err)
	}
	for _, o := range offers {
		rec := record(o, loc)
		line := make([]string, len(rec))
		for i, v := range rec {
			line[i] = fmt.Sprint(v)
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("запись строки csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write выбирает writer по формату.
func Write(w io.Writer, format Format, offers []models.Offer, loc *time.Location) error {
	if format == FormatCSV {
		return WriteCSV(w, offers, loc)
	}
	return WriteXLSX(w, offers, loc)
}

// SaveFile пишет выгрузку во временный файл в dir и возвращает путь.
// Вызывающий удаляет файл после отправки.
func SaveFile(dir string, format Format, offers []models.Offer, loc *time.Location) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("создание каталога выгрузки %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("offers_%s_%s.%s", time.Now().In(locOrUTC(loc)).Format("20060102_150405"), uuid.NewString()[:8], format))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("создание файла %s: %w", path, err)
	}
	if err := Write(file, format, offers, loc); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("закрытие файла %s: %w", path, err)
	}
	log.Printf("SaveFile: Выгрузка %s сохранена (%d пропозиций)", path, len(offers))
	return path, nil
}

func locOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
