package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"election-commission/internal/domain"
	"election-commission/internal/feature/election"
	"election-commission/pkg/utils"
)

type ElectionRepo struct{ db *gorm.DB }

var _ domain.ElectionRepository = (*ElectionRepo)(nil)

func NewElectionRepo(db *gorm.DB) *ElectionRepo { return &ElectionRepo{db: db} }

// Create 写入选举、选区与初始成员；调用方负责包事务
func (r *ElectionRepo) Create(ctx context.Context, e *domain.Election) error {
	tx := conn(ctx, r.db)
	if e.ID == "" {
		e.ID = utils.NewID()
	}
	em := election.ElectionModel{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		Status:            string(e.Status),
		ManuallyCompleted: e.ManuallyCompleted,
		CreatedBy:         e.CreatedBy,
	}
	if err := tx.Omit(clause.Associations).Create(&em).Error; err != nil {
		return fmt.Errorf("insert election: %w", err)
	}

	var members []election.MemberModel
	for i := range e.Constituencies {
		c := &e.Constituencies[i]
		if c.ID == "" {
			c.ID = utils.NewID()
		}
		cm := election.ConstituencyModel{
			ID:         c.ID,
			ElectionID: e.ID,
			Name:       c.Name,
			NameKey:    domain.ConstituencyKey(c.Name),
			Position:   i,
		}
		if err := tx.Omit(clause.Associations).Create(&cm).Error; err != nil {
			if isDupKey(err) {
				return fmt.Errorf("constituency %q: %w", c.Name, domain.ErrDuplicate)
			}
			return fmt.Errorf("insert constituency: %w", err)
		}
		for _, id := range c.Candidates {
			members = append(members, election.MemberModel{ConstituencyID: c.ID, Kind: string(domain.MemberCandidate), UserID: id})
		}
		for _, id := range c.Voters {
			members = append(members, election.MemberModel{ConstituencyID: c.ID, Kind: string(domain.MemberVoter), UserID: id})
		}
	}
	if len(members) > 0 {
		if err := tx.CreateInBatches(&members, 200).Error; err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
	}
	e.CreatedAt, e.UpdatedAt = em.CreatedAt, em.UpdatedAt
	return nil
}

func (r *ElectionRepo) FindByID(ctx context.Context, id string) (*domain.Election, error) {
	var em election.ElectionModel
	err := r.preload(conn(ctx, r.db)).Where("id = ?", id).First(&em).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find election: %w", err)
	}
	e := toElection(em)
	return &e, nil
}

func (r *ElectionRepo) List(ctx context.Context) ([]domain.Election, error) {
	var ems []election.ElectionModel
	if err := r.preload(conn(ctx, r.db)).Order("created_at DESC").Order("id DESC").Find(&ems).Error; err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	out := make([]domain.Election, 0, len(ems))
	for _, em := range ems {
		out = append(out, toElection(em))
	}
	return out, nil
}

func (r *ElectionRepo) preload(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Constituencies", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Constituencies.Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (r *ElectionRepo) CompareAndSetStatus(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	res := conn(ctx, r.db).Model(&election.ElectionModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Update("status", string(to))
	if res.Error != nil {
		return false, fmt.Errorf("update election status: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ElectionRepo) SetStatus(ctx context.Context, id string, status domain.Status, latch bool) error {
	updates := map[string]any{"status": string(status)}
	if latch {
		// 只置位，不存在清除 manually_completed 的路径
		updates["manually_completed"] = true
	}
	res := conn(ctx, r.db).Model(&election.ElectionModel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("set election status: %w", res.Error)
	}
	return nil
}

func (r *ElectionRepo) AddMember(ctx context.Context, constituencyID string, kind domain.MemberKind, userID string) error {
	m := election.MemberModel{ConstituencyID: constituencyID, Kind: string(kind), UserID: userID}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *ElectionRepo) EnsureMember(ctx context.Context, constituencyID string, kind domain.MemberKind, userID string) (bool, error) {
	m := election.MemberModel{ConstituencyID: constituencyID, Kind: string(kind), UserID: userID}
	// DO NOTHING：Postgres 事务内唯一冲突会使整个事务失效，不能靠报错再忽略
	res := conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(&m)
	if res.Error != nil {
		return false, fmt.Errorf("ensure member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ElectionRepo) RemoveMember(ctx context.Context, constituencyID string, kind domain.MemberKind, userID string) (bool, error) {
	res := conn(ctx, r.db).
		Where("constituency_id = ? AND kind = ? AND user_id = ?", constituencyID, string(kind), userID).
		Delete(&election.MemberModel{})
	if res.Error != nil {
		return false, fmt.Errorf("delete member: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Delete 删除选举及其选区、成员；选票由调用方在同一事务中先删
func (r *ElectionRepo) Delete(ctx context.Context, id string) error {
	tx := conn(ctx, r.db)
	sub := tx.Model(&election.ConstituencyModel{}).Select("id").Where("election_id = ?", id)
	if err := tx.Where("constituency_id IN (?)", sub).Delete(&election.MemberModel{}).Error; err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	if err := tx.Where("election_id = ?", id).Delete(&election.ConstituencyModel{}).Error; err != nil {
		return fmt.Errorf("delete constituencies: %w", err)
	}
	res := tx.Where("id = ?", id).Delete(&election.ElectionModel{})
	if res.Error != nil {
		return fmt.Errorf("delete election: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toElection(em election.ElectionModel) domain.Election {
	e := domain.Election{
		ID:                em.ID,
		Title:             em.Title,
		Description:       em.Description,
		StartDate:         em.StartDate,
		EndDate:           em.EndDate,
		Status:            domain.Status(em.Status),
		ManuallyCompleted: em.ManuallyCompleted,
		CreatedBy:         em.CreatedBy,
		Constituencies:    make([]domain.Constituency, 0, len(em.Constituencies)),
		CreatedAt:         em.CreatedAt,
		UpdatedAt:         em.UpdatedAt,
	}
	for _, cm := range em.Constituencies {
		c := domain.Constituency{ID: cm.ID, Name: cm.Name, Candidates: []string{}, Voters: []string{}}
		for _, m := range cm.Members {
			switch domain.MemberKind(m.Kind) {
			case domain.MemberCandidate:
				c.Candidates = append(c.Candidates, m.UserID)
			case domain.MemberVoter:
				c.Voters = append(c.Voters, m.UserID)
			}
		}
		e.Constituencies = append(e.Constituencies, c)
	}
	return e
}
