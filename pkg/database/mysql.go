package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/wonny/clv/pkg/config"
)

// OpenMySQL opens a MySQL/MariaDB handle for the MySQL transaction source.
// Accepts mariadb:// and mysql:// URLs as well as native driver DSNs.
func OpenMySQL(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn, err := toMySQLDSN(cfg.Database.MySQLDSN)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MaxConns)
	db.SetConnMaxLifetime(cfg.Database.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.Database.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping mysql: %w", err)
	}

	return db, nil
}

func toMySQLDSN(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "mariadb://") && !strings.HasPrefix(dsn, "mysql://") {
		return dsn, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse dsn: %w", err)
	}

	var user, pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}
	host := u.Host
	name := strings.TrimPrefix(u.Path, "/")
	if user == "" || host == "" || name == "" {
		return "", fmt.Errorf("incomplete dsn (user/host/db)")
	}

	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
		user, pass, host, name), nil
}
