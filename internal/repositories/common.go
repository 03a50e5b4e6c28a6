package repositories

import (
	"database/sql"
	"errors"
	"strings"

	intconfig "transferportal/internal/config"

	"github.com/go-sql-driver/mysql"
)

// ErrNoDB is returned when no connection is configured.
var ErrNoDB = errors.New("database not connected")

func pickDB(db *sql.DB) (*sql.DB, error) {
	if db != nil {
		return db, nil
	}
	if intconfig.DB != nil {
		return intconfig.DB, nil
	}
	return nil, ErrNoDB
}

// isDuplicateKey reports MySQL error 1062 (unique key violation).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

func likeArg(q string) string {
	q = strings.NewReplacer("%", "\\%", "_", "\\_").Replace(strings.TrimSpace(q))
	return "%" + q + "%"
}
