package migrations

import "embed"

// FS contains the embedded factory schema migrations.
//
//go:embed *.sql
var FS embed.FS
