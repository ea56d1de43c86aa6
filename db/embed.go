// Package db embeds the SQL schema that the server applies at startup.
package db

import _ "embed"

// Schema holds the DDL for the catalog, pricing, and order tables.
//
//go:embed migrations/001_schema.sql
var Schema string
