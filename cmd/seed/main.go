// Command seed creates an admin account and a small demo catalog: two teams,
// a stadium with zones, and one fixture a week from now.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/kirinyoku/matchday/internal/app"
	"github.com/kirinyoku/matchday/internal/config"
	"github.com/kirinyoku/matchday/internal/service/catalog"
	"github.com/kirinyoku/matchday/internal/service/fixtures"
	"github.com/kirinyoku/matchday/internal/service/users"
	"github.com/shopspring/decimal"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Error("seeding the in-memory store has no effect, set STORE_DRIVER=postgres")
		os.Exit(1)
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create application", "error", err)
		os.Exit(1)
	}

	err = seed(context.Background(), application, logger)
	application.Close()
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete")
}

func seed(ctx context.Context, a *app.App, logger *slog.Logger) error {
	svcs := a.Services

	_, err := svcs.Users.CreateAdmin(ctx, users.RegisterInput{
		Name:     envOr("SEED_ADMIN_NAME", "Admin"),
		Email:    envOr("SEED_ADMIN_EMAIL", "admin@matchday.local"),
		Password: envOr("SEED_ADMIN_PASSWORD", "change-me-now"),
	})
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		logger.Info("admin already exists")
	case err != nil:
		return err
	}

	home, err := svcs.Catalog.CreateTeam(ctx, catalog.TeamInput{Name: "Mumbai City", Abbr: "MCFC"})
	if err != nil {
		return err
	}
	away, err := svcs.Catalog.CreateTeam(ctx, catalog.TeamInput{Name: "Kerala Blasters", Abbr: "KBFC"})
	if err != nil {
		return err
	}

	stadium, err := svcs.Catalog.CreateStadium(ctx, catalog.StadiumInput{Name: "Mumbai Football Arena", Abbr: "Mumbai Arena"})
	if err != nil {
		return err
	}

	zones := []catalog.ZoneInput{
		{Name: "North Stand", PricePerSeat: decimal.NewFromInt(500), Size: 2000},
		{Name: "East Upper Tier", PricePerSeat: decimal.NewFromInt(1200), Size: 800},
		{Name: "VIP Box", PricePerSeat: decimal.RequireFromString("4999.99"), Size: 50},
	}
	for _, z := range zones {
		if _, err := svcs.Catalog.CreateZone(ctx, stadium.ID, z); err != nil {
			return err
		}
	}

	start := time.Now().UTC().Add(7 * 24 * time.Hour).Truncate(time.Hour)
	fixture, err := svcs.Fixtures.Save(ctx, fixtures.Create{Fields: fixtures.Fields{
		TeamOneID: home.ID,
		TeamTwoID: away.ID,
		StadiumID: stadium.ID,
		Start:     start,
		End:       start.Add(2 * time.Hour),
	}})
	if err != nil {
		return err
	}

	logger.Info("fixture scheduled",
		slog.String("fixture_id", fixture.ID.String()),
		slog.Time("start", start),
	)

	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
