//go:build integration

package testdb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// MustInsertUser inserts a user with a unique email and returns it.
func MustInsertUser(ctx context.Context, t *testing.T, db store.DBTX) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:             uuid.New(),
		Email:          fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		Name:           "Test User",
		HashedPassword: string(hash),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, email, hashed_password, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.HashedPassword, user.Name, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to insert test user: %v", err)
	}

	return user
}

// CountTasks returns how many tasks the owner has.
func CountTasks(ctx context.Context, t *testing.T, db store.DBTX, ownerID uuid.UUID) int {
	t.Helper()

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE user_id = $1`, ownerID).Scan(&n); err != nil {
		t.Fatalf("failed to count tasks: %v", err)
	}
	return n
}
