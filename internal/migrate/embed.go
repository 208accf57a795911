package migrate

import "embed"

// Files holds the SQL migrations and seeds shipped with the binary.
//
//go:embed migrations/*.sql
var Files embed.FS
