package contracts

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{
			name: "data load",
			err:  &DataLoadError{Source: "csv:OnlineRetail.csv", Reason: "missing column CustomerID"},
			kind: ErrDataLoad,
		},
		{
			name: "parse",
			err:  &ParseError{Line: 3, Field: ColumnInvoiceDate, Value: "yesterday", Err: io.ErrUnexpectedEOF},
			kind: ErrParse,
		},
		{
			name: "model fit",
			err:  &ModelFitError{Model: "bgnbd", Reason: "no repeat customers"},
			kind: ErrModelFit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("S1 failed: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.kind)
			}
			for _, other := range []error{ErrDataLoad, ErrParse, ErrModelFit} {
				if other != tt.kind && errors.Is(wrapped, other) {
					t.Errorf("%v unexpectedly matches %v", wrapped, other)
				}
			}
		})
	}
}

func TestParseError_Unwrap(t *testing.T) {
	err := fmt.Errorf("prepare: %w", &ParseError{Line: 7, Field: ColumnQuantity, Value: "x", Err: io.EOF})

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatal("expected ParseError")
	}
	if pe.Line != 7 {
		t.Errorf("Line = %d, want 7", pe.Line)
	}
	if !errors.Is(err, io.EOF) {
		t.Error("cause not reachable through Unwrap")
	}
}
