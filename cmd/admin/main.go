// Command admin is the operator CLI for tasks that have no self-serve
// surface: rotating reward rates, approving applications, and bans.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"listeningroom/backend/internal/models"
	"listeningroom/backend/internal/storage"
)

func usage() {
	fmt.Println(`Usage: admin <command> [args]

Commands:
  reward-rates <points_per_minute> <points_to_dollar_rate> <continuation_multiplier>
  approve-application <application_id>
  list-donations [limit]
  ban <user_id> [duration_hours]
  unban <user_id>`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN is not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	store := storage.NewStorageService(db, rdb)

	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "reward-rates":
		if len(os.Args) != 5 {
			usage()
		}
		ppm := parseFloat(os.Args[2], "points_per_minute")
		rate := parseFloat(os.Args[3], "points_to_dollar_rate")
		mult := parseFloat(os.Args[4], "continuation_multiplier")
		if err := store.ReplaceRewardSettings(&models.RewardSettings{
			PointsPerMinute:        ppm,
			PointsToDollarRate:     rate,
			ContinuationMultiplier: mult,
			IsActive:               true,
		}); err != nil {
			log.Fatalf("Error updating reward rates: %v", err)
		}
		fmt.Printf("Reward rates set: %.2f pts/min, %.4f $/pt, %.2fx continuation.\n", ppm, rate, mult)

	case "approve-application":
		if len(os.Args) != 3 {
			usage()
		}
		id, err := strconv.Atoi(os.Args[2])
		if err != nil {
			log.Fatal("Invalid application ID. Please provide an integer.")
		}
		if err := approveApplication(store, uint(id)); err != nil {
			log.Fatalf("Error approving application: %v", err)
		}
		fmt.Printf("Application %d approved.\n", id)

	case "list-donations":
		limit := 20
		if len(os.Args) > 2 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
				limit = n
			}
		}
		donations, total, err := store.ListDonations(1, limit)
		if err != nil {
			log.Fatalf("Error listing donations: %v", err)
		}
		fmt.Printf("%d donations total, showing %d:\n", total, len(donations))
		for _, d := range donations {
			fmt.Printf("  %s  %-11s %8d %s  %-9s %s\n",
				d.CreatedAt.Format("2006-01-02"), d.Provider, d.AmountMinor, d.Currency, d.Status, d.TxRef)
		}

	case "ban":
		if len(os.Args) < 3 {
			usage()
		}
		userID := os.Args[2]
		var hours int
		if len(os.Args) > 3 {
			hours, err = strconv.Atoi(os.Args[3])
			if err != nil {
				log.Fatal("Invalid duration. Please provide an integer number of hours.")
			}
		}
		if err := store.BanUser(userID, time.Duration(hours)*time.Hour); err != nil {
			log.Fatalf("Error banning user: %v", err)
		}
		fmt.Printf("User %s has been banned.\n", userID)

	case "unban":
		if len(os.Args) != 3 {
			usage()
		}
		userID := os.Args[2]
		if err := store.UnbanUser(userID); err != nil {
			log.Fatalf("Error unbanning user: %v", err)
		}
		fmt.Printf("User %s has been unbanned.\n", userID)

	default:
		usage()
	}
}

func parseFloat(s, name string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		log.Fatalf("Invalid %s: %q", name, s)
	}
	return v
}

func approveApplication(s storage.Storage, id uint) error {
	app, err := s.GetApplicationByID(id)
	if err != nil {
		return err
	}
	if app.Status != models.ApplicationPending {
		return fmt.Errorf("application %d is already %s", id, app.Status)
	}

	now := time.Now()
	app.Status = models.ApplicationApproved
	app.ReviewedAt = &now
	if err := s.UpdateApplication(app); err != nil {
		return err
	}
	if err := s.SetUserType(app.UserID, models.UserTypeVolunteer); err != nil {
		return err
	}
	return s.EnsureAvailability(app.UserID)
}
