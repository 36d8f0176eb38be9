package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
	"github.com/sahilchouksey/attendance-api/config"
)

// PostgreSQLStore is a raw database/sql store used by the migrate CLI for
// DDL that GORM's AutoMigrate cannot express (expression indexes, enum
// guards). The API server itself talks to Postgres through GORMStore.
type PostgreSQLStore struct {
	db *sql.DB
}

func Start() (*PostgreSQLStore, error) {
	getEnv, err := config.Get()
	if err != nil {
		return nil, err
	}

	connStr := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		getEnv.DB_HOST,
		getEnv.DB_USER_NAME,
		getEnv.DB_PASSWORD,
		getEnv.DB_NAME,
		getEnv.DB_PORT,
		getEnv.DB_SSL_MODE,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to PostgreSQL Database.")

	return &PostgreSQLStore{db: db}, nil
}

// Init applies the raw-SQL migrations
func (s *PostgreSQLStore) Init() error {
	return s.ApplyConstraints()
}

// ApplyConstraints creates the indexes and checks AutoMigrate leaves out.
func (s *PostgreSQLStore) ApplyConstraints() error {
	statements := []string{
		// Marking is an upsert keyed on this pair; the index backs
		// ON CONFLICT (session_id, student_id).
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_session_student
			ON attendance_records (session_id, student_id)`,

		// One active advisor mapping per user; assignment upserts on user_id.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_class_advisors_user
			ON class_advisors (user_id)`,

		// Timetable sanity: end strictly after start, valid weekday.
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_slot_time_order') THEN
				ALTER TABLE timetable_slots
					ADD CONSTRAINT chk_slot_time_order CHECK (start_time < end_time);
			END IF;
		END $$`,
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_slot_day_range') THEN
				ALTER TABLE timetable_slots
					ADD CONSTRAINT chk_slot_day_range CHECK (day_of_week BETWEEN 0 AND 6);
			END IF;
		END $$`,

		// Session/record status guards.
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_session_status') THEN
				ALTER TABLE attendance_sessions
					ADD CONSTRAINT chk_session_status
					CHECK (status IN ('scheduled', 'active', 'completed', 'cancelled'));
			END IF;
		END $$`,
		`DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_record_status') THEN
				ALTER TABLE attendance_records
					ADD CONSTRAINT chk_record_status
					CHECK (status IN ('present', 'absent', 'late'));
			END IF;
		END $$`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("applying constraint: %w", err)
		}
	}

	log.Println("Raw SQL constraints applied.")
	return nil
}

// Close closes the underlying connection
func (s *PostgreSQLStore) Close() error {
	return s.db.Close()
}

// HealthCheck pings the database
func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

// GetDB returns the underlying *sql.DB
func (s *PostgreSQLStore) GetDB() interface{} {
	return s.db
}
