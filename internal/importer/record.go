package importer

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one row of a SKU import file.
type Record struct {
	CoverPhoto   string
	Name         string
	Brand        string
	ProductID    string
	Stock        int
	VariantPhoto string
}

// Columns is the header every import file must carry, in any order.
var Columns = []string{"cover_product_photo", "name", "brand", "product_id", "stock", "variant_photo"}

var gzipMagic = []byte{0x1f, 0x8b}

// ReadRecords parses a SKU CSV from r. Gzipped input is detected and
// decompressed. Blank lines are skipped and an empty stock cell counts as 0.
func ReadRecords(ctx context.Context, r io.Reader) ([]Record, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if magic, err := br.Peek(2); err == nil && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		return readCSV(ctx, gz)
	}
	return readCSV(ctx, br)
}

func readCSV(ctx context.Context, r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("import file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	var records []Record
	for {
		if len(records)%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(col string) string {
			return strings.TrimSpace(row[idx[col]])
		}

		stock := 0
		if s := get("stock"); s != "" {
			stock, err = strconv.Atoi(s)
			if err != nil || stock < 0 {
				return nil, fmt.Errorf("line %d: invalid stock %q", line, s)
			}
		}

		rec := Record{
			CoverPhoto:   get("cover_product_photo"),
			Name:         get("name"),
			Brand:        get("brand"),
			ProductID:    get("product_id"),
			Stock:        stock,
			VariantPhoto: get("variant_photo"),
		}
		if rec.CoverPhoto == "" {
			return nil, fmt.Errorf("line %d: cover_product_photo is required", line)
		}
		records = append(records, rec)
	}

	return records, nil
}
