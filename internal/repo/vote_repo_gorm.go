package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"election-commission/internal/domain"
	"election-commission/internal/feature/vote"
	"election-commission/pkg/utils"
)

type VoteRepo struct{ db *gorm.DB }

var _ domain.VoteRepository = (*VoteRepo)(nil)

func NewVoteRepo(db *gorm.DB) *VoteRepo { return &VoteRepo{db: db} }

func (r *VoteRepo) Create(ctx context.Context, v *domain.Vote) error {
	if v.ID == "" {
		v.ID = utils.NewID()
	}
	m := vote.VoteModel{
		ID:           v.ID,
		ElectionID:   v.ElectionID,
		VoterID:      v.VoterID,
		Constituency: v.Constituency,
		CandidateID:  v.CandidateID,
		Timestamp:    v.Timestamp,
	}
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (r *VoteRepo) Exists(ctx context.Context, electionID, voterID string) (bool, error) {
	var n int64
	err := conn(ctx, r.db).Model(&vote.VoteModel{}).
		Where("election_id = ? AND voter_id = ?", electionID, voterID).
		Limit(1).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check vote: %w", err)
	}
	return n > 0, nil
}

func (r *VoteRepo) CountByElection(ctx context.Context, electionID string) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&vote.VoteModel{}).Where("election_id = ?", electionID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}

func (r *VoteRepo) CountByConstituency(ctx context.Context, electionID, constituency string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&vote.VoteModel{}).
		Where("election_id = ? AND LOWER(constituency) = ?", electionID, domain.ConstituencyKey(constituency)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count constituency votes: %w", err)
	}
	return n, nil
}

func (r *VoteRepo) DeleteByElection(ctx context.Context, electionID string) ([]domain.Vote, error) {
	tx := conn(ctx, r.db)
	var ms []vote.VoteModel
	if err := tx.Where("election_id = ?", electionID).Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("load votes: %w", err)
	}
	if len(ms) == 0 {
		return nil, nil
	}
	if err := tx.Where("election_id = ?", electionID).Delete(&vote.VoteModel{}).Error; err != nil {
		return nil, fmt.Errorf("delete votes: %w", err)
	}
	out := make([]domain.Vote, 0, len(ms))
	for _, m := range ms {
		out = append(out, domain.Vote{
			ID:           m.ID,
			ElectionID:   m.ElectionID,
			Constituency: m.Constituency,
			VoterID:      m.VoterID,
			CandidateID:  m.CandidateID,
			Timestamp:    m.Timestamp,
		})
	}
	return out, nil
}
