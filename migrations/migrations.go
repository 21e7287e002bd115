// Package migrations embeds the MySQL schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var Migrations embed.FS

const dialect = "mysql"

var (
	gooseUpContext     = goose.UpContext
	gooseDownContext   = goose.DownContext
	gooseStatusContext = goose.StatusContext
)

func setup() error {
	goose.SetBaseFS(Migrations)
	return goose.SetDialect(dialect)
}

// Run executes a goose command against db. Supported commands are up, down
// and status.
func Run(ctx context.Context, db *sql.DB, command string) error {
	if err := setup(); err != nil {
		return err
	}

	switch command {
	case "up":
		return gooseUpContext(ctx, db, ".")
	case "down":
		return gooseDownContext(ctx, db, ".")
	case "status":
		return gooseStatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}
