package e2e

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
)

// SupportedFormats lists the dataset file types the E2E tests write.
var SupportedFormats = []string{".csv", ".xlsx", ".db"}

var header = []string{"title", "pubDate", "guid", "link", "description"}

func row(it NewsItem) []string {
	return []string{it.Title, it.PubDate.Format(time.RFC1123), it.GUID, it.Link, it.Description}
}

// WriteDataset writes items to dir as a dataset of the given extension and returns its path.
func WriteDataset(dir, ext string, items []NewsItem) (string, error) {
	path := filepath.Join(dir, "bbc_news"+ext)
	switch ext {
	case ".csv":
		return path, writeCSV(path, items)
	case ".xlsx":
		return path, writeXLSX(path, items)
	case ".db":
		return path, writeSQLite(path, items)
	default:
		return "", fmt.Errorf("unsupported dataset extension %q", ext)
	}
}

func writeCSV(path string, items []NewsItem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, it := range items {
		if err := w.Write(row(it)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(path string, items []NewsItem) error {
	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row(it)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSQLite(path string, items []NewsItem) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE articles (title TEXT, pubDate TEXT, guid TEXT, link TEXT, description TEXT)`); err != nil {
		return err
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO articles VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		r := row(it)
		if _, err := stmt.Exec(r[0], r[1], r[2], r[3], r[4]); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
