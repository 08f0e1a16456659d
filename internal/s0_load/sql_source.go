package s0_load

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/clv/internal/contracts"
	"github.com/wonny/clv/pkg/logger"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// Expected table layout (one row per invoice line):
//   invoice_no, stock_code, description, quantity, invoice_date (timestamp),
//   unit_price, customer_id (nullable), country
// invoice_date is rendered in contracts.InvoiceDateLayout so S1 parses every source the same way.

const postgresQuery = `
	SELECT
		COALESCE(invoice_no::text, ''),
		COALESCE(stock_code::text, ''),
		COALESCE(description, ''),
		COALESCE(quantity::text, ''),
		COALESCE(to_char(invoice_date, 'FMMM/FMDD/YYYY HH24:MI'), ''),
		COALESCE(unit_price::text, ''),
		COALESCE(customer_id::text, ''),
		COALESCE(country, '')
	FROM %s
	ORDER BY invoice_date, invoice_no, stock_code
`

const mysqlQuery = `
	SELECT
		COALESCE(CAST(invoice_no AS CHAR), ''),
		COALESCE(CAST(stock_code AS CHAR), ''),
		COALESCE(description, ''),
		COALESCE(CAST(quantity AS CHAR), ''),
		COALESCE(DATE_FORMAT(invoice_date, '%%c/%%e/%%Y %%H:%%i'), ''),
		COALESCE(CAST(unit_price AS CHAR), ''),
		COALESCE(CAST(customer_id AS CHAR), ''),
		COALESCE(country, '')
	FROM %s
	ORDER BY invoice_date, invoice_no, stock_code
`

// PostgresSource reads the transaction log from a PostgreSQL table
type PostgresSource struct {
	pool   *pgxpool.Pool
	table  string
	logger *logger.Logger
}

// NewPostgresSource creates a PostgreSQL source
func NewPostgresSource(pool *pgxpool.Pool, table string, log *logger.Logger) *PostgresSource {
	return &PostgresSource{
		pool:   pool,
		table:  table,
		logger: log.Component("s0_load.postgres"),
	}
}

func (s *PostgresSource) Name() string {
	return "postgres:" + s.table
}

// Read selects every row of the table
func (s *PostgresSource) Read(ctx context.Context) ([]contracts.RawTransaction, error) {
	if !tableNamePattern.MatchString(s.table) {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "invalid table name"}
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(postgresQuery, s.table))
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "query", Err: err}
	}
	defer rows.Close()

	var out []contracts.RawTransaction
	for rows.Next() {
		tx := contracts.RawTransaction{Line: len(out) + 1}
		if err := rows.Scan(
			&tx.InvoiceNo, &tx.StockCode, &tx.Description, &tx.Quantity,
			&tx.InvoiceDate, &tx.UnitPrice, &tx.CustomerID, &tx.Country,
		); err != nil {
			return nil, &contracts.DataLoadError{Source: s.Name(), Reason: fmt.Sprintf("scan row %d", tx.Line), Err: err}
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "iterate rows", Err: err}
	}

	s.logger.WithField("rows", len(out)).Debug("table read")
	return out, nil
}

// MySQLSource reads the transaction log from a MySQL/MariaDB table
type MySQLSource struct {
	db     *sql.DB
	table  string
	logger *logger.Logger
}

// NewMySQLSource creates a MySQL source
func NewMySQLSource(db *sql.DB, table string, log *logger.Logger) *MySQLSource {
	return &MySQLSource{
		db:     db,
		table:  table,
		logger: log.Component("s0_load.mysql"),
	}
}

func (s *MySQLSource) Name() string {
	return "mysql:" + s.table
}

// Read selects every row of the table
func (s *MySQLSource) Read(ctx context.Context) ([]contracts.RawTransaction, error) {
	if !tableNamePattern.MatchString(s.table) {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "invalid table name"}
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(mysqlQuery, s.table))
	if err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "query", Err: err}
	}
	defer rows.Close()

	var out []contracts.RawTransaction
	for rows.Next() {
		tx := contracts.RawTransaction{Line: len(out) + 1}
		if err := rows.Scan(
			&tx.InvoiceNo, &tx.StockCode, &tx.Description, &tx.Quantity,
			&tx.InvoiceDate, &tx.UnitPrice, &tx.CustomerID, &tx.Country,
		); err != nil {
			return nil, &contracts.DataLoadError{Source: s.Name(), Reason: fmt.Sprintf("scan row %d", tx.Line), Err: err}
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &contracts.DataLoadError{Source: s.Name(), Reason: "iterate rows", Err: err}
	}

	s.logger.WithField("rows", len(out)).Debug("table read")
	return out, nil
}
