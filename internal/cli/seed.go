package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"invite-quiz-service/internal/catalog"
	"invite-quiz-service/internal/config"
	"invite-quiz-service/internal/infra/postgres"
)

// NewSeedCmd loads the YAML catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed questions and invite codes from a catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog file (defaults to catalog.file)")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if file == "" {
		file = cfg.Catalog.File
	}
	c, err := catalog.Load(file)
	if err != nil {
		return err
	}

	db, err := openBun(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := Migrate(ctx, db); err != nil {
		return err
	}
	if err := postgres.NewSeeder(db).Seed(ctx, c.Questions, c.InviteCodes); err != nil {
		return err
	}
	log.Printf("seeded %d questions and %d invite codes", len(c.Questions), len(c.InviteCodes))
	return nil
}
