//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasklist-api/internal/domain"
	"github.com/phrazzld/tasklist-api/internal/platform/postgres"
	"github.com/phrazzld/tasklist-api/internal/store"
	"github.com/phrazzld/tasklist-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTimeout is the maximum time allowed for a single store call.
const testTimeout = 5 * time.Second

func newHashedUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "password123", "Store Test")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv0123456789012345678901234567890"
	return user
}

func TestPostgresUserStore_Create(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	t.Run("success", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()
			userStore := postgres.NewPostgresUserStore(tx, nil)

			user := newHashedUser(t, "create-"+uuid.NewString()[:8]+"@example.com")
			require.NoError(t, userStore.Create(ctx, user))

			got, err := userStore.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, user.Email, got.Email)
			assert.Equal(t, user.Name, got.Name)
			assert.Equal(t, user.HashedPassword, got.HashedPassword)
		})
	})

	t.Run("duplicate email", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
			defer cancel()
			userStore := postgres.NewPostgresUserStore(tx, nil)

			email := "dup-" + uuid.NewString()[:8] + "@example.com"
			require.NoError(t, userStore.Create(ctx, newHashedUser(t, email)))

			err := userStore.Create(ctx, newHashedUser(t, email))
			require.Error(t, err)
			assert.ErrorIs(t, err, store.ErrEmailExists)
			assert.True(t, store.IsDuplicateError(err))
		})
	})

	t.Run("missing hash", func(t *testing.T) {
		testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
			userStore := postgres.NewPostgresUserStore(tx, nil)
			user := newHashedUser(t, "nohash@example.com")
			user.HashedPassword = ""

			err := userStore.Create(context.Background(), user)
			assert.ErrorIs(t, err, domain.ErrEmptyHashedPassword)
		})
	})
}

func TestPostgresUserStore_GetByEmail(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		userStore := postgres.NewPostgresUserStore(tx, nil)

		email := "lookup-" + uuid.NewString()[:8] + "@example.com"
		user := newHashedUser(t, email)
		require.NoError(t, userStore.Create(ctx, user))

		got, err := userStore.GetByEmail(ctx, "  "+email+"  ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)

		_, err = userStore.GetByEmail(ctx, "nobody-"+uuid.NewString()[:8]+"@example.com")
		assert.ErrorIs(t, err, store.ErrUserNotFound)
		assert.True(t, store.IsNotFoundError(err))

		_, err = userStore.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}
