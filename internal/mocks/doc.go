// Package mocks provides centralized mock implementations for testing.
//
// Stores here are in-memory and honour the same contracts as the Postgres
// implementations (normalized email uniqueness, owner-scoped task access),
// so handler and service tests can exercise real behavior without a database.
// Each mock also exposes Fn fields to override a single method:
//
//	tasks := mocks.NewMockTaskStore()
//	tasks.ListByOwnerFn = func(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
//	    return nil, errors.New("boom")
//	}
package mocks
