package db

import "database/sql"

// DB wraps the raw connection pool so stores depend on one local type
// instead of database/sql directly.
type DB struct {
	*sql.DB
}
