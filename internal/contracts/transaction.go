package contracts

import "time"

// InvoiceDateLayout is the textual layout of InvoiceDate in the source log ("12/1/2010 8:26")
const InvoiceDateLayout = "1/2/2006 15:04"

// Required source columns
const (
	ColumnCustomerID  = "CustomerID"
	ColumnInvoiceDate = "InvoiceDate"
	ColumnQuantity    = "Quantity"
	ColumnUnitPrice   = "UnitPrice"
)

// RequiredColumns returns the columns every source must provide
func RequiredColumns() []string {
	return []string{ColumnCustomerID, ColumnInvoiceDate, ColumnQuantity, ColumnUnitPrice}
}

// RawTransaction is one row of the transaction log as read from the source
// ⭐ SSOT: S0 → S1 전달 타입 (모든 값은 원문 텍스트)
type RawTransaction struct {
	Line        int    `json:"line" yaml:"line"` // 1-based data row number in the source
	InvoiceNo   string `json:"invoice_no,omitempty" yaml:"invoice_no,omitempty"`
	StockCode   string `json:"stock_code,omitempty" yaml:"stock_code,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    string `json:"quantity" yaml:"quantity"`
	InvoiceDate string `json:"invoice_date" yaml:"invoice_date"`
	UnitPrice   string `json:"unit_price" yaml:"unit_price"`
	CustomerID  string `json:"customer_id" yaml:"customer_id"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
}

// Transaction is a cleaned transaction
// ⭐ SSOT: S1 → S2 전달 타입
type Transaction struct {
	CustomerID  string    `json:"customer_id"`
	InvoiceDate time.Time `json:"invoice_date"` // UTC midnight
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
	TotalValue  float64   `json:"total_value"`
}
