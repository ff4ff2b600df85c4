package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/tally/internal/database"
	"github.com/koustreak/tally/internal/errs"
)

func TestNewDialer(t *testing.T) {
	cfg := &database.Config{
		Driver:         database.DriverMySQL,
		DSN:            "tally:secret@tcp(db.internal:3307)/results",
		ConnectTimeout: 4 * time.Second,
	}

	d, err := NewDialer(cfg)
	require.NoError(t, err)
	assert.Equal(t, "db.internal:3307", d.cfg.Addr)
	assert.Equal(t, "results", d.cfg.DBName)
	assert.True(t, d.cfg.ParseTime)
	assert.Equal(t, 4*time.Second, d.cfg.Timeout)
}

func TestNewDialer_InvalidDSN(t *testing.T) {
	_, err := NewDialer(&database.Config{Driver: database.DriverMySQL, DSN: "tcp(nope"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestDial_Unreachable(t *testing.T) {
	d, err := NewDialer(&database.Config{
		Driver:         database.DriverMySQL,
		DSN:            "root:root@tcp(127.0.0.1:1)/results",
		ConnectTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	s, err := d.Dial(context.Background())
	assert.Nil(t, s)
	assert.True(t, errs.IsUnavailable(err))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"bad conn", driver.ErrBadConn, errs.ErrKindUnavailable},
		{"access denied", &mysql.MySQLError{Number: 1045, Message: "Access denied"}, errs.ErrKindPermissionDenied},
		{"unknown database", &mysql.MySQLError{Number: 1049}, errs.ErrKindUnavailable},
		{"syntax", &mysql.MySQLError{Number: 1064, Message: "You have an error"}, errs.ErrKindQueryFailed},
		{"no such table", &mysql.MySQLError{Number: 1146}, errs.ErrKindQueryFailed},
		{"other", errors.New("weird"), errs.ErrKindQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, errs.KindOf(mapError(tt.err, "query failed")))
		})
	}
}
