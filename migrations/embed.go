// Package migrations embebe los scripts SQL versionados del esquema.
package migrations

import "embed"

// FS scripts <version>_<nombre>.{up,down}.sql en formato golang-migrate.
//
//go:embed *.sql
var FS embed.FS
