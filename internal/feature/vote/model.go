package vote

import "time"

// VoteModel 一人一选举一票由唯一索引保证，而不是应用层检查
type VoteModel struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	ElectionID   string    `gorm:"type:varchar(36);not null;uniqueIndex:uniq_vote_election_voter,priority:1"`
	VoterID      string    `gorm:"type:varchar(36);not null;uniqueIndex:uniq_vote_election_voter,priority:2;index"`
	Constituency string    `gorm:"size:128;not null"`
	CandidateID  string    `gorm:"type:varchar(36);not null;index"`
	Timestamp    time.Time `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (VoteModel) TableName() string { return "votes" }
