package sqlite

import (
	"database/sql/driver"
	"fmt"

	"golang.org/x/text/cases"
	moderncsqlite "modernc.org/sqlite"
)

// FoldFunction is the SQL function that case-folds text with full Unicode
// rules. SQLite's own LOWER and LIKE only fold ASCII, so 'MÉDIA' and 'média'
// compare equal only through fold.
const FoldFunction = "fold"

func init() {
	if err := moderncsqlite.RegisterDeterministicScalarFunction(FoldFunction, 1, fold); err != nil {
		panic(fmt.Sprintf("sqlite: register %s: %v", FoldFunction, err))
	}
}

// fold maps NULL to NULL and leaves non-text values untouched.
func fold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch value := args[0].(type) {
	case string:
		return cases.Fold().String(value), nil
	case []byte:
		return cases.Fold().String(string(value)), nil
	default:
		return value, nil
	}
}
