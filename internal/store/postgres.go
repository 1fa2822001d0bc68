package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// PGStore keeps every logical document as one jsonb row. Saves are atomic
// per document, which closes the torn-write window the file backend has,
// though a load-modify-save sequence still races across requests.
type PGStore struct {
	db *sql.DB
}

var _ Store = (*PGStore)(nil)

// NewPGStore connects to PostgreSQL with OpenTelemetry instrumentation and
// ensures the documents table exists. Connection settings come from the
// DB_HOST, DB_PORT, DB_USER, DB_PASSWORD and DB_NAME environment variables.
func NewPGStore() (*PGStore, error) {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")

	if host == "" || user == "" || password == "" || dbname == "" {
		return nil, fmt.Errorf("missing required database environment variables")
	}
	if port == "" {
		port = "5432"
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := otelsql.Open("postgres", connStr,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbname),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db,
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBName(dbname),
		),
	); err != nil {
		log.Printf("Warning: failed to register database stats metrics: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name text PRIMARY KEY,
		body jsonb NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create documents table: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("✓ Connected to PostgreSQL document store (OpenTelemetry enabled)")
	return &PGStore{db: db}, nil
}

func (s *PGStore) Load(ctx context.Context, name string, out interface{}, def interface{}) error {
	var body []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if err == sql.ErrNoRows {
		body, err = json.Marshal(def)
		if err != nil {
			return fmt.Errorf("failed to encode default for %s: %w", name, err)
		}
		// ON CONFLICT keeps a concurrent creator's content.
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO documents (name, body) VALUES ($1, $2)
			 ON CONFLICT (name) DO NOTHING`, name, body); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return nil
}

func (s *PGStore) Save(ctx context.Context, name string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (name, body) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body`, name, body); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PGStore) Close() error {
	return s.db.Close()
}
