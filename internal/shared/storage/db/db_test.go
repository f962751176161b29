package db

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

// withMockOpen replaces openDB with sqlmock connections and returns the
// number of opens performed.
func withMockOpen(t *testing.T, failFirst bool) *int32 {
	t.Helper()
	var calls int32
	prev := openDB
	openDB = func(driverName, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 && failFirst {
			return nil, errors.New("dial tcp: connection refused")
		}
		db, _, err := sqlmock.New()
		return db, err
	}
	t.Cleanup(func() { openDB = prev })
	prevShared := shared
	shared = newPools()
	t.Cleanup(func() { shared = prevShared })
	return &calls
}

func TestGetSingletonReturnsSamePointer(t *testing.T) {
	calls := withMockOpen(t, false)

	db1, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton first: %v", err)
	}
	db2, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("GetSingleton second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected singleton pointers to match")
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected one open, got %d", *calls)
	}
}

func TestGetSingletonKeepsOnePoolPerURL(t *testing.T) {
	withMockOpen(t, false)

	app, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	admin, err := GetSingleton(context.Background(), "postgres://admin", AdminOptions(DefaultLambdaOptions()))
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if app == admin {
		t.Fatalf("expected distinct pools for distinct urls")
	}
}

func TestGetSingletonConcurrentCallersShareOneOpen(t *testing.T) {
	calls := withMockOpen(t, false)

	var wg sync.WaitGroup
	results := make([]*sql.DB, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			db, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions())
			if err != nil {
				t.Errorf("GetSingleton: %v", err)
				return
			}
			results[i] = db
		}(i)
	}
	wg.Wait()
	for _, db := range results {
		if db != results[0] {
			t.Fatalf("expected all callers to share one pool")
		}
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Fatalf("expected one open, got %d", *calls)
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	withMockOpen(t, true)

	if _, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions()); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db, err := GetSingleton(context.Background(), "postgres://app", DefaultLambdaOptions())
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	withMockOpen(t, false)

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, err := Connect(context.Background(), "postgres://app", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if db.Stats().MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", db.Stats().MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.ConnMaxIdleTime != 45*time.Second || opts.PingTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestAdminOptionsCapsPool(t *testing.T) {
	opts := AdminOptions(DefaultServerOptions())
	if opts.Label != "admin" || opts.MaxOpenConns != 2 || opts.MaxIdleConns != 1 {
		t.Fatalf("unexpected admin options %+v", opts)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), " ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestMigrateRejectsUnknownCommand(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	if err := Migrate(context.Background(), db, "sideways"); err == nil {
		t.Fatalf("expected unknown command error")
	}
	if err := Migrate(context.Background(), nil, "up"); err != nil {
		t.Fatalf("expected nil db to be a no-op, got %v", err)
	}
}
