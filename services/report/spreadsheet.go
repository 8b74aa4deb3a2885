package report

import (
	"fmt"

	"sjsage522/newsscraper/internal/scraper"

	"github.com/tealeg/xlsx/v2"
)

const sheetName = "Sheet1"

// Columns is the spreadsheet header row
var Columns = []string{"title", "description", "date", "picture_filename", "search_phrase_count"}

// WriteSpreadsheet saves records, in order, as rows under a header row
func WriteSpreadsheet(path string, records []scraper.NewsRecord) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range Columns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.Title)
		row.AddCell().SetString(r.Description)
		row.AddCell().SetString(r.Date)
		row.AddCell().SetString(r.PictureFilename)
		row.AddCell().SetInt(r.SearchPhraseCount)
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet %s: %w", path, err)
	}
	return nil
}
