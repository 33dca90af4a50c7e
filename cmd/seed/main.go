package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/coursehub-backend/internal/app"
	"github.com/yungbote/coursehub-backend/internal/seed"
)

func main() {
	path := flag.String("file", "fixtures.yaml", "YAML fixtures to apply")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fh, err := os.Open(*path)
	if err != nil {
		fmt.Printf("Failed to open fixtures: %v\n", err)
		os.Exit(1)
	}
	fixtures, err := seed.Load(fh)
	_ = fh.Close()
	if err != nil {
		fmt.Printf("Failed to load fixtures: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	seeder := seed.NewSeeder(a.Log, a.Services.User, a.Services.Semester, a.Services.Event)
	rep, err := seeder.Apply(ctx, fixtures)
	if err != nil {
		a.Log.Error("Seeding failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("Seeding complete",
		"users_skipped", rep.UsersSkipped,
		"semesters_skipped", rep.SemestersSkipped,
		"events_skipped", rep.EventsSkipped,
	)
}
