package statement

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/logger"
)

// Format names a statement file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(p string) (Format, error) {
	ext := filepath.Ext(p)
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, p)
	}
	return ParseFormat(ext)
}

// Result is a parsed statement.
type Result struct {
	Source       string               `json:"source"`
	Format       Format               `json:"format"`
	Transactions []domain.Transaction `json:"transactions"`
	Stats        Stats                `json:"stats"`
}

// Loader reads statements from local files or GCS and normalises them.
type Loader struct {
	store    ObjectStore
	pdf      PDFParser
	readFile func(string) ([]byte, error)
}

// NewLoader creates a Loader. store is only needed for gs:// URIs and pdf
// only for PDF statements; either may be nil.
func NewLoader(store ObjectStore, pdf PDFParser) *Loader {
	return &Loader{store: store, pdf: pdf, readFile: os.ReadFile}
}

// NewCloudLoader creates a Loader that reads gs:// URIs from GCS and PDFs
// through Gemini. When no GenAI client can be created, PDF statements are
// rejected with ErrUnsupportedFormat and a warning is logged.
func NewCloudLoader(ctx context.Context, model string) *Loader {
	var pdf PDFParser
	parser, err := NewGeminiParser(ctx, model)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("Gemini unavailable, PDF statements are disabled")
	} else {
		pdf = parser
	}
	return NewLoader(NewGCSStore(), pdf)
}

// Load reads the statement at uri, a local path or gs://bucket/object.
func (l *Loader) Load(ctx context.Context, uri string) (*Result, error) {
	format, err := FormatFromPath(uri)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	var data []byte
	if IsGCSURI(uri) {
		if l.store == nil {
			return nil, fmt.Errorf("Load: no object store configured for %s", uri)
		}
		data, err = l.store.Fetch(ctx, uri)
	} else {
		data, err = l.readFile(uri)
	}
	if err != nil {
		return nil, fmt.Errorf("Load: reading %s: %w", uri, err)
	}

	res, err := l.Parse(ctx, format, data)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	res.Source = uri
	return res, nil
}

// Parse reads statement bytes of the given format.
func (l *Loader) Parse(ctx context.Context, format Format, data []byte) (*Result, error) {
	log := logger.FromContext(ctx)

	var rows []RawRow
	var err error
	switch format {
	case FormatCSV:
		rows, err = ReadCSV(bytes.NewReader(data))
	case FormatXLSX:
		rows, err = ReadXLSX(bytes.NewReader(data))
	case FormatPDF:
		if l.pdf == nil {
			return nil, fmt.Errorf("Parse: %w: pdf parser not configured", ErrUnsupportedFormat)
		}
		rows, err = l.pdf.ParsePDF(ctx, data)
	default:
		return nil, fmt.Errorf("Parse: %w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("Parse: %w", err)
	}

	txs, stats := Normalize(rows)
	log.Info().
		Str("format", string(format)).
		Int("rows", stats.Rows).
		Int("transactions", stats.Kept).
		Int("non_debit", stats.NonDebit).
		Int("bad_amount", stats.BadAmount).
		Msg("Statement parsed")

	return &Result{Format: format, Transactions: txs, Stats: stats}, nil
}
