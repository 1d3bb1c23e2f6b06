// Package loader turns uploaded workbooks and JSON documents into raw
// tables for the normalizer
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Helper-Yoon/chat-analyzer/internal/ingestion"
	"github.com/Helper-Yoon/chat-analyzer/internal/types"
	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads every sheet of an xlsx workbook. The first row of a
// sheet is its header; empty sheets are skipped. Cells are read unformatted,
// so dates arrive as spreadsheet serial numbers.
func ReadWorkbook(r io.Reader) ([]types.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var tables []types.RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		header := make([]string, len(rows[0]))
		for i, h := range rows[0] {
			header[i] = strings.TrimSpace(h)
		}
		tables = append(tables, types.RawTable{Name: sheet, Header: header, Rows: rows[1:]})
	}
	return tables, nil
}

// Document is the JSON form of a table upload
type Document struct {
	Tables []types.RawTable `json:"tables"`
}

// ReadJSON reads a Document
func ReadJSON(r io.Reader) ([]types.RawTable, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return doc.Tables, nil
}

// WorkbookSource is a TableSource over an in-memory workbook
type WorkbookSource struct {
	data []byte
}

// NewWorkbookSource creates a WorkbookSource
func NewWorkbookSource(data []byte) *WorkbookSource {
	return &WorkbookSource{data: data}
}

// LoadTables parses the workbook
func (s *WorkbookSource) LoadTables(_ context.Context) ([]types.RawTable, error) {
	return ReadWorkbook(bytes.NewReader(s.data))
}

// FileSource opens a .xlsx or .json file as a TableSource
func FileSource(path string) (ingestion.TableSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return NewWorkbookSource(data), nil
	case ".json":
		tables, err := ReadJSON(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return ingestion.StaticSource(tables), nil
	default:
		return nil, fmt.Errorf("unsupported input file %q (want .xlsx or .json)", filepath.Base(path))
	}
}
