// Package importer seeds cards from xlsx or csv sheets with the columns
// learner_id, content_id and content_type.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/vytor/wordflash/internal/errors"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
	"github.com/vytor/wordflash/internal/services"
)

const DefaultConcurrency = 4

// Row is one parsed sheet line. Line is 1-based and counts the header.
type Row struct {
	Line        int
	LearnerID   string
	ContentID   string
	ContentType models.ContentType
}

// Result summarises an import run.
type Result struct {
	Processed int
	Imported  int
	Errors    []string
}

// Importer creates cards through a CardService.
type Importer struct {
	service     services.CardService
	concurrency int
	sheet       string
}

// Option configures an Importer.
type Option func(*Importer)

// WithConcurrency bounds the number of cards created in parallel.
func WithConcurrency(n int) Option {
	return func(i *Importer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithSheet picks the xlsx sheet to read. The first sheet is used otherwise.
func WithSheet(name string) Option {
	return func(i *Importer) {
		i.sheet = name
	}
}

func New(service services.CardService, opts ...Option) *Importer {
	i := &Importer{service: service, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ImportFile reads path (by extension) and creates every valid row's card.
// Bad rows are reported in Result.Errors; storage failures abort the run.
func (i *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	log := logger.FromContext(ctx).WithPrefix("importer").WithField("file", filepath.Base(path))

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = readCSV(path)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(path, i.sheet)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	log.Debug("read %d records", len(records))

	rows, rowErrs := ParseRecords(records)
	result, err := i.Import(ctx, rows)
	if result != nil {
		result.Processed += len(rowErrs)
		result.Errors = append(rowErrs, result.Errors...)
	}
	if err != nil {
		log.Error("import aborted: %v", err)
		return result, err
	}
	log.Info("imported %d of %d rows", result.Imported, result.Processed)
	return result, nil
}

// Import creates the cards for rows, at most concurrency at a time.
func (i *Importer) Import(ctx context.Context, rows []Row) (*Result, error) {
	var (
		mu     sync.Mutex
		result = &Result{Processed: len(rows)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for _, row := range rows {
		row := row
		g.Go(func() error {
			_, err := i.service.GetOrCreateCard(gctx, row.LearnerID, row.ContentID, row.ContentType)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Imported++
				return nil
			case errors.Is(err, apperrors.ErrValidation):
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row.Line, err))
				return nil
			default:
				return fmt.Errorf("row %d: %w", row.Line, err)
			}
		})
	}
	err := g.Wait()
	return result, err
}

// ParseRecords turns raw sheet records into rows. A first record whose first
// cell is "learner_id" is treated as a header. Empty lines are skipped and an
// empty content type means word.
func ParseRecords(records [][]string) ([]Row, []string) {
	var (
		rows []Row
		errs []string
	)
	for idx, rec := range records {
		line := idx + 1
		if idx == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "learner_id") {
			continue
		}
		if blank(rec) {
			continue
		}
		if len(rec) < 2 {
			errs = append(errs, fmt.Sprintf("row %d: expected learner_id and content_id", line))
			continue
		}
		row := Row{
			Line:        line,
			LearnerID:   strings.TrimSpace(rec[0]),
			ContentID:   strings.TrimSpace(rec[1]),
			ContentType: models.ContentTypeWord,
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			row.ContentType = models.ContentType(strings.ToLower(strings.TrimSpace(rec[2])))
		}
		if !row.ContentType.IsValid() {
			errs = append(errs, fmt.Sprintf("row %d: unknown content type %q", line, row.ContentType))
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs
}

func blank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("xlsx has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
