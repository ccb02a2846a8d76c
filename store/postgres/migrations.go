package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the wallet store.
var Migrations = migrate.NewGroup("wallet")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_wallet_batches",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wallet_batches (
    id          TEXT PRIMARY KEY,
    wallet_id   TEXT NOT NULL,
    seq         INT NOT NULL,
    bundle      TEXT NOT NULL,
    count       BIGINT NOT NULL CHECK (count > 0),
    expires_at  TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_batches_seq ON wallet_batches (wallet_id, seq);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wallet_batches`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_wallet_consumptions",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS wallet_consumptions (
    id          TEXT PRIMARY KEY,
    wallet_id   TEXT NOT NULL,
    seq         INT NOT NULL,
    bundle      TEXT NOT NULL,
    count       BIGINT NOT NULL CHECK (count > 0),
    expires_at  TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_wallet_consumptions_seq ON wallet_consumptions (wallet_id, seq);
CREATE INDEX IF NOT EXISTS idx_wallet_consumptions_cohort ON wallet_consumptions (wallet_id, bundle, expires_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS wallet_consumptions`)
				return err
			},
		},
	)
}
