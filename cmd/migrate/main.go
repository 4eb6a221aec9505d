// Command migrate applies the SQL migrations and can seed a demo dataset.
//
//	migrate -cmd up
//	migrate -cmd down
//	migrate -cmd to -version 1
//	migrate -cmd up -seed
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"

	"ms-transactions/internal/config"
	"ms-transactions/internal/database"
	"ms-transactions/internal/database/migrations"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

func main() {
	command := flag.String("cmd", "up", "migration command: up, down or to")
	version := flag.Uint("version", 0, "target version for -cmd to")
	seed := flag.Bool("seed", false, "insert demo users and an event after migrating")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Close()

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()
	ctx := context.Background()

	bunDB, err := database.Connect(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", err.Error())
	}
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{MigrationsDir: cfg.Database.MigrationsDir}, log)
	defer runner.Close()

	switch *command {
	case "up":
		err = runner.RunMigrations()
	case "down":
		err = runner.MigrateDown()
	case "to":
		err = runner.MigrateTo(*version)
	default:
		log.Fatal("MIGRATE", fmt.Sprintf("Unknown command %q", *command))
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("Command %q completed", *command))

	if *seed {
		if err := seedData(ctx, bunDB); err != nil {
			log.Fatal("SEED", err.Error())
		}
		log.Info("SEED", "Demo data inserted")
	}
}

func seedData(ctx context.Context, db *bun.DB) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		users := []models.User{
			{ID: uuid.New().String(), Name: "Alice Wonderland", Email: "alice@example.com", Role: models.RoleCustomer, ReferralCode: "ALICE01"},
			{ID: uuid.New().String(), Name: "Bob Builder", Email: "bob@example.com", Role: models.RoleCustomer, ReferralCode: "BOB01"},
			{ID: uuid.New().String(), Name: "Olivia Organizer", Email: "olivia@example.com", Role: models.RoleOrganizer},
			{ID: uuid.New().String(), Name: "Adam Admin", Email: "admin@example.com", Role: models.RoleAdmin},
		}
		if _, err := tx.NewInsert().Model(&users).On("CONFLICT (email) DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}

		event := models.Event{
			ID:            uuid.New().String(),
			OrganizerID:   users[2].ID,
			Name:          "Summer Fest 2025",
			Description:   "Annual summer music festival.",
			Price:         150000,
			CapacitySeat:  100,
			AvailableSeat: 100,
			StartDate:     now.AddDate(0, 1, 0),
			EndDate:       now.AddDate(0, 1, 3),
			Category:      []string{"MUSIC"},
			Location:      "JAKARTA",
		}
		if _, err := tx.NewInsert().Model(&event).Exec(ctx); err != nil {
			return fmt.Errorf("seed event: %w", err)
		}

		voucher := models.Voucher{
			ID:         uuid.New().String(),
			EventID:    event.ID,
			Code:       "SUMMER20",
			Discount:   30000,
			ValidFrom:  now,
			ValidUntil: now.AddDate(0, 1, 0),
			IsActive:   true,
		}
		if _, err := tx.NewInsert().Model(&voucher).Exec(ctx); err != nil {
			return fmt.Errorf("seed voucher: %w", err)
		}
		return nil
	})
}
