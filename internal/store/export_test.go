package store

import "database/sql"

// RawDB exposes the handle behind gw so tests can wrap it with another dialect.
func RawDB(gw *Gateway) *sql.DB { return gw.db }
