package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"prepquiz-service/internal/config"
	"prepquiz-service/internal/domain"
)

// NewSeedCmd loads the baseline catalog: the four subjects, the last
// ten exam years and the two courses.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed baseline catalog data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	for _, name := range []string{"Mathematics", "Physics", "Chemistry", "Biology"} {
		subject := domain.Subject{Name: name}
		if _, err := db.NewInsert().Model(&subject).
			On("CONFLICT (name) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed subject %q: %w", name, err)
		}
	}

	currentYear := time.Now().Year()
	for i := 0; i < 10; i++ {
		year := domain.Year{Name: strconv.Itoa(currentYear - i)}
		if _, err := db.NewInsert().Model(&year).
			On("CONFLICT (name) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed year %q: %w", year.Name, err)
		}
	}

	for _, name := range []string{"First Course", "Second Course"} {
		course := domain.Course{Name: name}
		if _, err := db.NewInsert().Model(&course).
			On("CONFLICT (name) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed course %q: %w", name, err)
		}
	}

	log.Printf("seeding finished")
	return nil
}
