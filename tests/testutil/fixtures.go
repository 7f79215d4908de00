package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/fintrack/internal/domain"
	"github.com/iho/fintrack/internal/infrastructure/postgres"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool *pgxpool.Pool
	t    *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the migrations. The test is
// skipped when DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	// Tests run from tests/integration or the repository root.
	migrationsPath := "internal/infrastructure/postgres/migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../internal/infrastructure/postgres/migrations"
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{Pool: pool, t: t}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE transactions CASCADE;
		TRUNCATE TABLE bank_statements CASCADE;
		TRUNCATE TABLE team_user CASCADE;
		TRUNCATE TABLE teams CASCADE;
		TRUNCATE TABLE users CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestUser inserts a user and returns it.
func (db *TestDB) CreateTestUser(ctx context.Context, name string) *domain.User {
	db.t.Helper()

	user := &domain.User{ID: GenerateID(), Email: name + "@example.com", Name: name}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO users (id, email, name) VALUES ($1, $2, $3)`,
		user.ID, user.Email, user.Name)
	if err != nil {
		db.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateTestTeam inserts a team owned by ownerID with the given members.
func (db *TestDB) CreateTestTeam(ctx context.Context, name, ownerID string, memberIDs ...string) string {
	db.t.Helper()

	id := GenerateID()
	if _, err := db.Pool.Exec(ctx,
		`INSERT INTO teams (id, name, owner_id) VALUES ($1, $2, $3)`,
		id, name, ownerID); err != nil {
		db.t.Fatalf("failed to create test team: %v", err)
	}

	for _, memberID := range memberIDs {
		if _, err := db.Pool.Exec(ctx,
			`INSERT INTO team_user (team_id, user_id) VALUES ($1, $2)`,
			id, memberID); err != nil {
			db.t.Fatalf("failed to add team member: %v", err)
		}
	}

	return id
}

// NewTestTransaction returns an unsaved expense dated today.
func NewTestTransaction(userID string, teamID *string, amount string) *domain.Transaction {
	now := time.Now().UTC()
	return &domain.Transaction{
		ID:          GenerateID(),
		UserID:      userID,
		TeamID:      teamID,
		Description: "fixture",
		Amount:      decimal.RequireFromString(amount),
		Category:    domain.CategoryUncategorized,
		Type:        domain.TransactionTypeExpense,
		Date:        now.Truncate(24 * time.Hour),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
