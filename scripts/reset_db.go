package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"tailor-backend/internal/models"
)

// Usage: go run scripts/reset_db.go [collection]
//
// With no argument every document and user is removed. With a collection
// name only that collection's documents are removed.
func main() {
	collection := ""
	if len(os.Args) > 1 {
		collection = os.Args[1]
		if !known(collection) {
			log.Fatalf("Unknown collection %q (known: %v)\n", collection, models.Collections)
		}
	}

	fmt.Println("========================================")
	fmt.Println("   Reset Database for Testing")
	fmt.Println("========================================")
	fmt.Println()
	if collection == "" {
		fmt.Println("WARNING: This will DELETE ALL USER DATA!")
		fmt.Println()
		fmt.Println("This will:")
		fmt.Println("  - Delete all documents in every collection")
		fmt.Println("  - Delete all users")
	} else {
		fmt.Printf("WARNING: This will delete every document in %q.\n", collection)
	}
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)

	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	// Load environment variables
	godotenv.Load()

	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnv("DB_PORT", "5432")
	dbUser := getEnv("DB_USER", "postgres")
	dbPassword := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "tailor_db")

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		dbUser, dbPassword, dbHost, dbPort, dbName)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	fmt.Println()
	fmt.Println("Resetting database...")

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v\n", err)
	}
	defer tx.Rollback(ctx)

	if collection != "" {
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
		if err != nil {
			log.Fatalf("Failed to clear %s: %v\n", collection, err)
		}
		fmt.Printf("  ✓ Cleared %s (%d documents)\n", collection, tag.RowsAffected())
	} else {
		for _, table := range []string{"documents", "users"} {
			if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
				log.Fatalf("Failed to truncate %s: %v\n", table, err)
			}
			fmt.Printf("  ✓ Cleared %s\n", table)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit transaction: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Database reset successful!")
}

func known(collection string) bool {
	for _, c := range models.Collections {
		if c == collection {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
