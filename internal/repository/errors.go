// Package repository holds the MySQL implementations of the service
// ports.  Driver errors are classified here so higher layers only ever
// see the sentinel values from package model.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/flight-seat-reservation/internal/model"
)

// MySQL server error numbers we react to.
const (
	erDupEntry        = 1062
	erLockWaitTimeout = 1205
	erLockDeadlock    = 1213
)

func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports a unique key violation.
func isDuplicate(err error) bool { return mysqlNumber(err) == erDupEntry }

// classifyTxError maps lock failures to model.ErrSeatContention and keeps
// everything else as is.
func classifyTxError(err error) error {
	switch mysqlNumber(err) {
	case erLockDeadlock, erLockWaitTimeout:
		return model.ErrSeatContention
	}
	return err
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '?')
	}
	return string(b)
}
