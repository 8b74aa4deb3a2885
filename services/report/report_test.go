package report

import (
	"bytes"
	"os"
	"testing"
	"time"

	"sjsage522/newsscraper/internal/scraper"
	"sjsage522/newsscraper/logger"
	apperrors "sjsage522/newsscraper/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

var records = []scraper.NewsRecord{
	{
		Title:             "Breaking Election News",
		Description:       "election results",
		Date:              "2024-08-01",
		PictureFilename:   "POLITICS_BreakingElectio_20240801120000.jpg",
		SearchPhraseCount: 2,
	},
	{
		Title:             "Weather",
		Description:       scraper.NoDescription,
		Date:              "2024-08-01",
		PictureFilename:   "placeholder.png",
		SearchPhraseCount: 0,
	},
}

func newRun(t *testing.T) *scraper.RunContext {
	t.Helper()
	run, err := scraper.NewRunContext(scraper.RunParams{
		SiteURL:      "https://news.example.com",
		SearchPhrase: "election",
		Category:     "Politics",
	}, t.TempDir(), time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return run
}

func TestWriteSpreadsheet(t *testing.T) {
	run := newRun(t)
	require.NoError(t, WriteSpreadsheet(run.SpreadsheetPath(), records))

	f, err := xlsx.OpenFile(run.SpreadsheetPath())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	rows := f.Sheets[0].Rows
	require.Len(t, rows, 3)

	var header []string
	for _, c := range rows[0].Cells {
		header = append(header, c.String())
	}
	assert.Equal(t, Columns, header)

	assert.Equal(t, "Breaking Election News", rows[1].Cells[0].String())
	assert.Equal(t, "2", rows[1].Cells[4].String())
	assert.Equal(t, "Weather", rows[2].Cells[0].String())
	assert.Equal(t, "placeholder.png", rows[2].Cells[3].String())
}

func TestWriteScrapeLog(t *testing.T) {
	var buf bytes.Buffer
	err := WriteScrapeLog(&buf, Header{
		GeneratedAt:     time.Date(2024, 8, 1, 14, 5, 9, 0, time.FixedZone("KST", 9*3600)),
		RunID:           "run-1",
		SiteURL:         "https://news.example.com",
		Category:        "Politics",
		SearchPhrase:    "election",
		SpreadsheetPath: "output/POLITICS_20240801120000/POLITICS_news_data_20240801120000.xlsx",
	}, records[:1])
	require.NoError(t, err)

	want := "Scraping Report - 2024-08-01 05:05:09 UTC\n\n" +
		"Run ID: run-1\n" +
		"URL: https://news.example.com\n" +
		"Category: Politics\n" +
		"Search Phrase: election\n" +
		"Excel File: output/POLITICS_20240801120000/POLITICS_news_data_20240801120000.xlsx\n\n" +
		"Extracted News Articles:\n" +
		"- Title: Breaking Election News\n" +
		"  Description: election results\n" +
		"  Date: 2024-08-01\n" +
		"  Picture Filename: POLITICS_BreakingElectio_20240801120000.jpg\n" +
		"  Search Phrase Count: 2\n\n"
	assert.Equal(t, want, buf.String())
}

func TestWriterSave(t *testing.T) {
	run := newRun(t)
	w := NewWriter(run, logger.Nop())

	errs := w.Save(records)
	assert.Empty(t, errs)
	assert.FileExists(t, run.SpreadsheetPath())
	assert.FileExists(t, run.LogPath())

	data, err := os.ReadFile(run.LogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Excel File: "+run.SpreadsheetPath())
	assert.Contains(t, string(data), "Run ID: "+run.RunID)
}

func TestWriterSaveIsBestEffort(t *testing.T) {
	run := newRun(t)
	// A directory in the spreadsheet's place makes that write fail
	require.NoError(t, os.Mkdir(run.SpreadsheetPath(), 0755))

	errs := NewWriter(run, logger.Nop()).Save(records)
	require.Len(t, errs, 1)
	assert.True(t, apperrors.IsType(errs[0], apperrors.ErrorTypeReport))
	assert.FileExists(t, run.LogPath(), "the log is still written")
}
