package repository

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder 收集 gorm 生成的 SQL，配合 DryRun 使用，不需要真实的 MySQL
type sqlRecorder struct {
	mu   sync.Mutex
	stmt []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmt = append(r.stmt, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) statements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmt...)
}

func newMySQLDryRun(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "bank:bank@tcp(127.0.0.1:3306)/bank?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("open dry-run mysql: %v", err)
	}
	return db, rec
}

func TestGetByNumberForUpdateLocksRow(t *testing.T) {
	db, rec := newMySQLDryRun(t)
	repo := NewAccountRepository(db)

	if _, err := repo.GetByNumberForUpdate(context.Background(), db, "CTE100001"); err != nil {
		t.Fatalf("GetByNumberForUpdate: %v", err)
	}
	if _, err := repo.GetByNumber(context.Background(), db, "CTE100001"); err != nil {
		t.Fatalf("GetByNumber: %v", err)
	}

	stmts := rec.statements()
	if len(stmts) != 2 {
		t.Fatalf("statements=%q", stmts)
	}
	if !strings.HasSuffix(stmts[0], "FOR UPDATE") || !strings.Contains(stmts[0], "CTE100001") {
		t.Fatalf("locked read=%q", stmts[0])
	}
	if strings.Contains(stmts[1], "FOR UPDATE") {
		t.Fatalf("plain read must not lock: %q", stmts[1])
	}
}

func TestLockByIDsLocksInAscendingOrder(t *testing.T) {
	db, rec := newMySQLDryRun(t)
	repo := NewAccountRepository(db)

	if _, err := repo.LockByIDs(context.Background(), db, 9, 3, 9); err != nil {
		t.Fatalf("LockByIDs: %v", err)
	}

	stmts := rec.statements()
	if len(stmts) != 2 {
		t.Fatalf("each id should be locked once, statements=%q", stmts)
	}
	for i, want := range []string{"id = 3", "id = 9"} {
		if !strings.Contains(stmts[i], want) {
			t.Fatalf("statement %d=%q want %q", i, stmts[i], want)
		}
		if !strings.HasSuffix(stmts[i], "FOR UPDATE") {
			t.Fatalf("statement %d not locked: %q", i, stmts[i])
		}
	}
}
