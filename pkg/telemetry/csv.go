package telemetry

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/mpapenbr/simlap-service-go/pkg/model"
)

// ParseError is returned when the telemetry source is not readable as
// structured records.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("failed to parse telemetry file (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("failed to parse telemetry file: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DecodeCSV reads a csv file with a header row into raw records.
// Cells are trimmed, empty cells are omitted from the record so that the
// next column alias is considered. Numeric cells are converted to float64.
func DecodeCSV(r io.Reader) ([]model.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, toParseError(err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	ret := []model.RawRecord{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		rec := make(model.RawRecord, len(header))
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			rec[header[i]] = cast(cell)
		}
		ret = append(ret, rec)
	}
	if len(ret) == 0 {
		return nil, ErrEmptyInput
	}
	return ret, nil
}

// cast keeps NaN and Inf as strings, they are no usable numbers
func cast(cell string) any {
	if f, err := strconv.ParseFloat(cell, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	switch strings.ToLower(cell) {
	case "true":
		return true
	case "false":
		return false
	}
	return cell
}

func toParseError(err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.Line, Err: csvErr.Err}
	}
	return &ParseError{Err: err}
}
