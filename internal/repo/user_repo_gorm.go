package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"election-commission/internal/domain"
	"election-commission/internal/feature/user"
	"election-commission/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

var _ domain.UserRepository = (*UserRepo)(nil)

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	m := toUserModel(u)
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isDupKey(err) {
			if strings.Contains(strings.ToLower(err.Error()), "voter_id") {
				return domain.ErrDuplicateVoterID
			}
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	*u = toUser(m)
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *UserRepo) first(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var m user.UserModel
	err := conn(ctx, r.db).Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u := toUser(m)
	return &u, nil
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	var ms []user.UserModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return toUsers(ms), nil
}

func (r *UserRepo) ListByRole(ctx context.Context, role domain.Role, constituency string) ([]domain.User, error) {
	q := conn(ctx, r.db).Where("role = ?", string(role))
	if key := domain.ConstituencyKey(constituency); key != "" {
		q = q.Where("LOWER(constituency) = ?", key)
	}
	var ms []user.UserModel
	if err := q.Order("created_at ASC").Order("id ASC").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return toUsers(ms), nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	q := conn(ctx, r.db).Model(&user.UserModel{})
	if f.Role != "" {
		q = q.Where("role = ?", string(f.Role))
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + escapeLike(s) + "%"
		q = q.Where("email LIKE ? ESCAPE '!' OR name LIKE ? ESCAPE '!'", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var ms []user.UserModel
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&ms).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return toUsers(ms), total, nil
}

func (r *UserRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&user.UserModel{}).Where("role = ?", string(role)).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}

func (r *UserRepo) IncrementVotes(ctx context.Context, candidateID string) error {
	res := conn(ctx, r.db).Model(&user.UserModel{}).
		Where("id = ?", candidateID).
		UpdateColumn("votes", gorm.Expr("votes + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment votes: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) MarkVoted(ctx context.Context, voterID string) error {
	// MySQL 对未变化的行 RowsAffected 为 0，这里不据此判断
	err := conn(ctx, r.db).Model(&user.UserModel{}).
		Where("id = ?", voterID).
		UpdateColumn("has_voted", true).Error
	if err != nil {
		return fmt.Errorf("mark voted: %w", err)
	}
	return nil
}

func (r *UserRepo) VoteCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []struct {
		ID    string
		Votes int64
	}
	err := conn(ctx, r.db).Model(&user.UserModel{}).Select("id", "votes").Where("id IN ?", ids).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("vote counts: %w", err)
	}
	for _, row := range rows {
		out[row.ID] = row.Votes
	}
	return out, nil
}

func toUserModel(u *domain.User) user.UserModel {
	return user.UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Constituency: u.Constituency,
		Party:        u.Party,
		Manifesto:    u.Manifesto,
		VoterID:      u.VoterID,
		HasVoted:     u.HasVoted,
		Votes:        u.Votes,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func toUser(m user.UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		Constituency: m.Constituency,
		Party:        m.Party,
		Manifesto:    m.Manifesto,
		VoterID:      m.VoterID,
		HasVoted:     m.HasVoted,
		Votes:        m.Votes,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUsers(ms []user.UserModel) []domain.User {
	out := make([]domain.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, toUser(m))
	}
	return out
}

// escapeLike 让用户输入的 % 和 _ 按字面匹配；转义符用 '!'，三种方言写法一致
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
