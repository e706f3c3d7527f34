// Command seed loads a JSON roster of doctors, their keywords and their
// weekly schedules into the database. Intended for local development and
// demo environments.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

type SeedFile struct {
	Doctors []SeedDoctor `json:"doctors"`
}

type SeedDoctor struct {
	Username  string         `json:"username"`
	FullName  string         `json:"full_name"`
	Sector    string         `json:"sector"`
	Hospital  string         `json:"hospital_name"`
	Specialty string         `json:"specialty"`
	Password  string         `json:"password"`
	Keywords  []string       `json:"keywords"`
	Schedules []SeedSchedule `json:"schedules"`
}

type SeedSchedule struct {
	Weekday              string `json:"weekday"`
	MaxPatients          int    `json:"max_patients"`
	StartMinutes         int    `json:"start_minutes"`
	AvgMinutesPerPatient int    `json:"avg_minutes_per_patient"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: seed <doctors-file.json>")
		os.Exit(1)
	}

	_ = godotenv.Load()

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		log.Fatalf("parse seed file: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		log.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	for _, d := range seed.Doctors {
		if err := insertDoctor(ctx, pool, d); err != nil {
			log.Fatalf("seed %s: %v", d.Username, err)
		}
		fmt.Printf("seeded %s (%s)\n", d.FullName, d.Specialty)
	}

	fmt.Printf("done: %d doctors\n", len(seed.Doctors))
}

func insertDoctor(ctx context.Context, pool *pgxpool.Pool, d SeedDoctor) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(d.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO doctors (id, username, full_name, sector, hospital_name, specialty, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (username) DO NOTHING`,
		id, d.Username, d.FullName, d.Sector, d.Hospital, d.Specialty, string(hash))
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}

	// Re-read the id in case the doctor already existed.
	if err := tx.QueryRow(ctx, `SELECT id FROM doctors WHERE username = $1`, d.Username).Scan(&id); err != nil {
		return fmt.Errorf("lookup doctor: %w", err)
	}

	for _, kw := range d.Keywords {
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_keywords (doctor_id, keyword) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, id, strings.ToLower(strings.TrimSpace(kw))); err != nil {
			return fmt.Errorf("insert keyword: %w", err)
		}
	}

	for _, s := range d.Schedules {
		if _, err := tx.Exec(ctx, `
			INSERT INTO doctor_schedules (doctor_id, weekday, max_patients, start_minutes, avg_minutes_per_patient)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (doctor_id, weekday) DO UPDATE SET
				max_patients = EXCLUDED.max_patients,
				start_minutes = EXCLUDED.start_minutes,
				avg_minutes_per_patient = EXCLUDED.avg_minutes_per_patient`,
			id, s.Weekday, s.MaxPatients, s.StartMinutes, s.AvgMinutesPerPatient); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}

	return tx.Commit(ctx)
}
