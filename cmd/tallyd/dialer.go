package main

import (
	"fmt"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/database/mysql"
	"github.com/koustreak/tally/internal/database/postgres"
	"github.com/koustreak/tally/internal/database/sqlite"
	"github.com/koustreak/tally/internal/errs"
)

// newDialer picks the driver package for cfg.Driver.
func newDialer(cfg *database.Config) (database.Dialer, error) {
	switch cfg.Driver {
	case database.DriverPostgres:
		return asDialer(postgres.NewDialer(cfg))
	case database.DriverMySQL:
		return asDialer(mysql.NewDialer(cfg))
	case database.DriverSQLite:
		return asDialer(sqlite.NewDialer(cfg))
	default:
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unsupported database driver %q", cfg.Driver))
	}
}

// asDialer keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func asDialer[D database.Dialer](d D, err error) (database.Dialer, error) {
	if err != nil {
		return nil, err
	}
	return d, nil
}
