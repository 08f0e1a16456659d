package s0_load

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

// CSVSource reads the transaction log from a delimited file
type CSVSource struct {
	path     string
	encoding string
	logger   *logger.Logger
}

// NewCSVSource creates a CSV source. encoding is one of windows-1252 (default), cp1252, latin1, utf-8.
func NewCSVSource(path, encoding string, log *logger.Logger) *CSVSource {
	return &CSVSource{
		path:     path,
		encoding: encoding,
		logger:   log.Component("s0_load.csv"),
	}
}

// Name identifies the source in logs and errors
func (s *CSVSource) Name() string {
	return "csv:" + s.path
}

// Read parses the whole file
func (s *CSVSource) Read(ctx context.Context) ([]contracts.RawTransaction, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "open file", Err: err}
	}
	defer f.Close()

	dec, err := decoderFor(s.encoding)
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "select encoding", Err: err}
	}

	rows, err := readCSV(ctx, transform.NewReader(f, dec), s.Name())
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"path":     s.path,
		"encoding": s.encoding,
		"rows":     len(rows),
	}).Debug("csv parsed")

	return rows, nil
}

// decoderFor maps a configured encoding name to a decoder
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(name) {
	case "", "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "utf-8", "utf8":
		// strips a leading BOM if present
		return unicode.UTF8BOM.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// readCSV reads a header row followed by data rows
func readCSV(ctx context.Context, r io.Reader, source string) ([]contracts.RawTransaction, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &contracts.DataLoadError{Source: source, Reason: "empty file"}
		}
		return nil, &contracts.DataLoadError{Source: source, Reason: "read header", Err: err}
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range contracts.RequiredColumns() {
		if _, ok := cols[required]; !ok {
			return nil, &contracts.DataLoadError{Source: source, Reason: "missing column " + required}
		}
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var rows []contracts.RawTransaction
	for line := 1; ; line++ {
		if line%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &contracts.DataLoadError{Source: source, Reason: fmt.Sprintf("read row %d", line), Err: err}
		}

		rows = append(rows, contracts.RawTransaction{
			Line:        line,
			InvoiceNo:   field(record, "InvoiceNo"),
			StockCode:   field(record, "StockCode"),
			Description: field(record, "Description"),
			Quantity:    field(record, contracts.ColumnQuantity),
			InvoiceDate: field(record, contracts.ColumnInvoiceDate),
			UnitPrice:   field(record, contracts.ColumnUnitPrice),
			CustomerID:  field(record, contracts.ColumnCustomerID),
			Country:     field(record, "Country"),
		})
	}

	return rows, nil
}
