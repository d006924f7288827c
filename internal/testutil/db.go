// Package testutil 测试共用的 sqlite 库与固定时钟
package testutil

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"election-commission/internal/core/database"
	"election-commission/internal/repo"
)

// NewDB 每个测试一个临时文件库，已迁移
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:        "sqlite",
		DSN:           filepath.Join(t.TempDir(), "election.db"),
		LogLevel:      "silent",
		NoPrepareStmt: true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type Stores struct {
	DB        *gorm.DB
	Tx        *repo.TxRunner
	Users     *repo.UserRepo
	Elections *repo.ElectionRepo
	Votes     *repo.VoteRepo
}

func NewStores(t *testing.T) *Stores { return StoresFor(NewDB(t)) }

// StoresFor 在已迁移的任意库上组装仓储
func StoresFor(db *gorm.DB) *Stores {
	return &Stores{
		DB:        db,
		Tx:        repo.NewTxRunner(db),
		Users:     repo.NewUserRepo(db),
		Elections: repo.NewElectionRepo(db),
		Votes:     repo.NewVoteRepo(db),
	}
}

// Clock 可手动推进的时钟
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{now: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }
