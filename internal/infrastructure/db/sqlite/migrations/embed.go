package migrations

import "embed"

// FS contains the embedded goose migrations for the validation store.
//
//go:embed *.sql
var FS embed.FS
