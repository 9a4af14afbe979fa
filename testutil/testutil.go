package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/Sean-Brix/RiderMind-sub003/database"
	"github.com/Sean-Brix/RiderMind-sub003/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}

// DB opens a private shared-cache in-memory SQLite database with every table
// migrated. It is closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := database.OpenSQLite(dsn, Logger(tb))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.RunMigrations(db, Logger(tb)); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Store wraps DB with a process-local group locker.
func Store(tb testing.TB) *database.Store {
	tb.Helper()
	return database.NewStore(DB(tb), database.NewLocalLocker(), Logger(tb))
}

// FileStore opens a WAL-mode SQLite file under tb.TempDir with conns open
// connections, so transactions really run side by side and only locker keeps
// writers of one key apart.
func FileStore(tb testing.TB, locker database.Locker, conns int) *database.Store {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "content.db")
	db, err := database.OpenSQLite("file:"+path+"?_journal_mode=WAL&_busy_timeout=5000", Logger(tb))
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)
	if err := database.RunMigrations(db, Logger(tb)); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}

	tb.Cleanup(func() { _ = sqlDB.Close() })
	return database.NewStore(db, locker, Logger(tb))
}
