package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/moazalc/autostacks-app-sub000/internal/domain"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres"
	"github.com/moazalc/autostacks-app-sub000/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and applies migrations. The test is
// skipped when DATABASE_URL is unset or -short is given.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	if err := postgres.RunMigrations(dbURL, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 20, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	db := &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
	t.Cleanup(db.Cleanup)
	return db
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE outbox_events;
		TRUNCATE TABLE entries, balances, cars, accounts CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount inserts an account with a zero balance row.
func (db *TestDB) CreateTestAccount(ctx context.Context, name string) *domain.Account {
	db.t.Helper()

	now := time.Now().UTC()
	id := GenerateID()
	ts := pgtype.Timestamptz{Time: now, Valid: true}

	if _, err := db.Queries.CreateAccount(ctx, generated.CreateAccountParams{
		ID:        id,
		Name:      name,
		CreatedAt: ts,
		UpdatedAt: ts,
	}); err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}

	if err := db.Queries.EnsureBalance(ctx, generated.EnsureBalanceParams{AccountID: id, UpdatedAt: ts}); err != nil {
		db.t.Fatalf("failed to create test balance: %v", err)
	}

	return &domain.Account{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
}

// CreateTestCar inserts a car owned by accountID.
func (db *TestDB) CreateTestCar(ctx context.Context, accountID, name string) *domain.Car {
	db.t.Helper()

	car := &domain.Car{ID: GenerateID(), AccountID: accountID, Name: name, CreatedAt: time.Now().UTC()}
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO cars (id, account_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		car.ID, car.AccountID, car.Name, car.CreatedAt,
	); err != nil {
		db.t.Fatalf("failed to create test car: %v", err)
	}
	return car
}

// OverwriteBalance sets a stored balance behind the engine's back.
func (db *TestDB) OverwriteBalance(ctx context.Context, accountID string, amount decimal.Decimal) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx,
		`UPDATE balances SET amount = $2::numeric WHERE account_id = $1`,
		accountID, amount.String(),
	); err != nil {
		db.t.Fatalf("failed to overwrite balance: %v", err)
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
