// Package mysql opens sessions to MySQL through go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/go-sql-driver/mysql"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/database/sqlconn"
	"github.com/koustreak/tally/internal/errs"
)

// Dialer is a MySQL implementation of database.Dialer.
type Dialer struct {
	cfg       *mysql.Config
	connector driver.Connector
}

// NewDialer parses cfg.DSN, e.g. "user:pass@tcp(localhost:3306)/results".
func NewDialer(cfg *database.Config) (*Dialer, error) {
	mcfg, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid DSN", err)
	}
	mcfg.ParseTime = true
	if cfg.ConnectTimeout > 0 {
		mcfg.Timeout = cfg.ConnectTimeout
	}
	connector, err := mysql.NewConnector(mcfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid mysql config", err)
	}
	return &Dialer{cfg: mcfg, connector: connector}, nil
}

// Dial opens one new connection.
func (d *Dialer) Dial(ctx context.Context) (database.Session, error) {
	s, err := sqlconn.Open(ctx, sql.OpenDB(d.connector), mapError)
	if err != nil {
		return nil, err
	}
	return s, nil
}
