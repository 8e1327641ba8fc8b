// Package importer loads cart partitions from CSV exports, one line per
// row. Rows for the same identity merge quantities the same way the live
// cart does, clamping at the per-line maximum.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookworm/internal/domain"
)

type SnapshotWriter interface {
	Load(ctx context.Context, identityKey string) (*domain.PartitionSnapshot, error)
	Save(ctx context.Context, identityKey string, snap domain.PartitionSnapshot) error
}

// CSVImporter reads cart line rows and writes merged partition snapshots.
type CSVImporter struct {
	reader   *csv.Reader
	cartRepo SnapshotWriter
}

func NewCSVImporter(r io.Reader, repo SnapshotWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		cartRepo: repo,
	}
}

type csvRow struct {
	IdentityKey    string
	BookID         string
	Title          string
	CoverURL       string
	Price          float64
	DiscountPrice  float64
	CurrencySymbol string
	Quantity       int
}

// Run parses CSV rows grouped by identity key and upserts one snapshot per
// partition. It returns the number of partitions written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	partitions := make(map[string][]domain.CartLine)
	var order []string

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read row: %w", err)
		}

		row, err := parseRow(record, index)
		if err != nil {
			return 0, err
		}
		if row == nil {
			continue
		}

		if _, seen := partitions[row.IdentityKey]; !seen {
			order = append(order, row.IdentityKey)
		}
		partitions[row.IdentityKey] = mergeLine(partitions[row.IdentityKey], domain.CartLine{
			BookID:         row.BookID,
			Title:          row.Title,
			CoverURL:       row.CoverURL,
			Price:          row.Price,
			DiscountPrice:  row.DiscountPrice,
			CurrencySymbol: row.CurrencySymbol,
			Quantity:       row.Quantity,
		})
	}

	written := 0
	for _, key := range order {
		lines := partitions[key]
		if existing, err := i.cartRepo.Load(ctx, key); err == nil {
			for _, line := range lines {
				existing.Lines = mergeLine(existing.Lines, line)
			}
			lines = existing.Lines
		} else if !errors.Is(err, domain.ErrNotFound) {
			return written, fmt.Errorf("load partition %q: %w", key, err)
		}

		snap := domain.PartitionSnapshot{
			SchemaVersion: domain.SnapshotSchemaVersion,
			Lines:         lines,
		}
		if err := i.cartRepo.Save(ctx, key, snap); err != nil {
			return written, fmt.Errorf("save partition %q: %w", key, err)
		}
		written++
	}

	return written, nil
}

func mergeLine(lines []domain.CartLine, line domain.CartLine) []domain.CartLine {
	for idx, existing := range lines {
		if existing.BookID == line.BookID {
			sum := existing.Quantity + line.Quantity
			lines[idx].Quantity = min(sum, domain.MaxLineQuantity)
			return lines
		}
	}
	line.Quantity = min(line.Quantity, domain.MaxLineQuantity)
	return append(lines, line)
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*csvRow, error) {
	identity := pick(record, index, "identity_key")
	bookID := pick(record, index, "book_id")
	if identity == "" && bookID == "" {
		return nil, nil
	}
	if identity == "" || bookID == "" {
		return nil, fmt.Errorf("row needs identity_key and book_id, got identity=%q book=%q", identity, bookID)
	}
	if identity != domain.Anonymous.Key() && !strings.HasPrefix(identity, "user:") {
		return nil, fmt.Errorf("invalid identity key %q", identity)
	}

	qty, err := strconv.Atoi(pick(record, index, "quantity"))
	if err != nil || qty <= 0 {
		return nil, fmt.Errorf("invalid quantity for book %q", bookID)
	}

	price, _ := strconv.ParseFloat(pick(record, index, "price"), 64)
	discount := price
	if s := pick(record, index, "discount_price"); s != "" {
		discount, _ = strconv.ParseFloat(s, 64)
	}

	return &csvRow{
		IdentityKey:    identity,
		BookID:         bookID,
		Title:          pick(record, index, "title"),
		CoverURL:       pick(record, index, "cover_url"),
		Price:          price,
		DiscountPrice:  discount,
		CurrencySymbol: pick(record, index, "currency_symbol"),
		Quantity:       qty,
	}, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
