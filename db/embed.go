// Package db provides the embedded schema of the PostgreSQL store backend.
package db

import _ "embed"

// Schema contains the DDL for the key-value table backing storage.Store.
//
//go:embed migrations/001_schema.sql
var Schema string
