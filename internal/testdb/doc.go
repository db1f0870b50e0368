//go:build integration

// Package testdb provides utilities for database integration tests.
//
// Tests run inside a transaction that is rolled back when the test finishes,
// so they can run in parallel against one database without cleanup:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        userStore := postgres.NewPostgresUserStore(tx, nil)
//	        // ...
//	    })
//	}
//
// The connection string is read from TASKS_TEST_DATABASE_URL, then
// DATABASE_URL. Tests are skipped when neither is set.
package testdb
