package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"election-commission/internal/domain"
	"election-commission/internal/feature/election"
	"election-commission/internal/feature/user"
	"election-commission/internal/feature/vote"
)

type txKey struct{}

// withTx 把事务挂到 ctx 上，仓储层通过 conn 取用
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

type TxRunner struct{ db *gorm.DB }

var _ domain.TxRunner = (*TxRunner)(nil)

func NewTxRunner(db *gorm.DB) *TxRunner { return &TxRunner{db: db} }

// InTx 已在事务中时直接复用外层事务
func (r *TxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

// AutoMigrate 建表 + 唯一索引
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.UserModel{},
		&election.ElectionModel{},
		&election.ConstituencyModel{},
		&election.MemberModel{},
		&vote.VoteModel{},
	)
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey：TranslateError 会吞掉约束名，无法区分是哪个唯一键冲突
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
