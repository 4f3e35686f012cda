package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ProductCreator creates catalog products through the product service so that
// pricing rules and uniqueness checks apply to imported rows.
type ProductCreator interface {
	CreateProduct(ctx context.Context, categoryID int64, spec domain.ProductSpec) (*domain.Product, error)
}

type CategoryResolver interface {
	GetOrCreate(ctx context.Context, name string) (*domain.Category, error)
}

// Result summarises one import run.
type Result struct {
	Imported int
	Skipped  int
}

// CSVImporter reads product rows with the columns category, productName,
// description, quantity, price and discount. Column order is free.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductCreator
	categories CategoryResolver
	categoryID map[string]int64
}

func NewCSVImporter(r io.Reader, products ProductCreator, categories CategoryResolver) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		categoryID: map[string]int64{},
	}
}

var requiredColumns = []string{"category", "productName", "price"}

type csvRow struct {
	line        int
	Category    string
	Name        string
	Description string
	Quantity    int
	Price       decimal.Decimal
	Discount    decimal.Decimal
}

// Run imports every row. Products that already exist in their category are
// skipped; any other failure stops the run.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return res, fmt.Errorf("missing column %q", col)
		}
	}

	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return res, err
		}
		if row == nil {
			continue
		}

		err = i.save(ctx, row)
		switch {
		case err == nil:
			res.Imported++
		case errors.Is(err, domain.ErrDuplicateResource):
			res.Skipped++
		default:
			return res, err
		}
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	catID, ok := i.categoryID[row.Category]
	if !ok {
		cat, err := i.categories.GetOrCreate(ctx, row.Category)
		if err != nil {
			return fmt.Errorf("row %d: category %q: %w", row.line, row.Category, err)
		}
		catID = cat.ID
		i.categoryID[row.Category] = catID
	}

	_, err := i.products.CreateProduct(ctx, catID, domain.ProductSpec{
		Name:        row.Name,
		Description: row.Description,
		Quantity:    row.Quantity,
		Price:       row.Price,
		Discount:    row.Discount,
	})
	if err != nil {
		return fmt.Errorf("row %d: product %q: %w", row.line, row.Name, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

// parseRow returns nil for blank rows.
func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		line:        line,
		Category:    pick(record, index, "category"),
		Name:        pick(record, index, "productName"),
		Description: pick(record, index, "description"),
	}
	qty := pick(record, index, "quantity")
	price := pick(record, index, "price")
	discount := pick(record, index, "discount")

	if row.Category == "" && row.Name == "" && price == "" {
		return nil, nil
	}
	if row.Category == "" || row.Name == "" {
		return nil, fmt.Errorf("row %d: category and productName required: %w", line, domain.ErrInvalidInput)
	}

	var err error
	if qty != "" {
		if row.Quantity, err = strconv.Atoi(qty); err != nil {
			return nil, fmt.Errorf("row %d: quantity %q: %w", line, qty, domain.ErrInvalidInput)
		}
	}
	if row.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("row %d: price %q: %w", line, price, domain.ErrInvalidInput)
	}
	if discount != "" {
		if row.Discount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("row %d: discount %q: %w", line, discount, domain.ErrInvalidInput)
		}
	}
	return row, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
