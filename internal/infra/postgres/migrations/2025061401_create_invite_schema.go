package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 2025061401_create_invite_schema.up.sql
var createInviteSchemaSQL string

//go:embed 2025061401_create_invite_schema.down.sql
var dropInviteSchemaSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createInviteSchemaSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, dropInviteSchemaSQL)
			return err
		},
	)
}
