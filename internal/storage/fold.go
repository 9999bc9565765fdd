package storage

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"ledger/internal/query"

	"modernc.org/sqlite"
)

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(query.FoldFunc, 1, fold)
}

// fold lowercases with Go's Unicode case mapping; SQLite's lower() maps ASCII only.

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return strings.ToLower(fmt.Sprint(v)), nil
	}
}
