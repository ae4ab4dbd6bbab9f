// Package all registers every built-in storage backend. Import it for side
// effects from the wiring layer:
//
//	import _ "ecommetl/internal/storage/all"
//
// after which storage.New accepts the kinds sqlite, postgres, mssql and
// mysql.
package all

import (
	_ "ecommetl/internal/storage/mssql"
	_ "ecommetl/internal/storage/mysql"
	_ "ecommetl/internal/storage/postgres"
	_ "ecommetl/internal/storage/sqlite"
)
