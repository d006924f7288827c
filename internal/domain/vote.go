package domain

import (
	"context"
	"fmt"
	"time"
)

// Vote is immutable once recorded. Constituency is the voter's constituency at cast time.
type Vote struct {
	ID           string    `json:"id"`
	ElectionID   string    `json:"election"`
	Constituency string    `json:"constituency"`
	VoterID      string    `json:"voter"`
	CandidateID  string    `json:"candidate"`
	Timestamp    time.Time `json:"timestamp"`
}

type VoteRepository interface {
	// Create 依赖 (election_id, voter_id) 唯一索引；重复返回 ErrDuplicate
	Create(ctx context.Context, v *Vote) error
	Exists(ctx context.Context, electionID, voterID string) (bool, error)
	CountByElection(ctx context.Context, electionID string) (int64, error)
	CountByConstituency(ctx context.Context, electionID, constituency string) (int64, error)
	// DeleteByElection removes the election's votes and returns what was removed.
	DeleteByElection(ctx context.Context, electionID string) ([]Vote, error)
}

// CandidateProfile 候选人名片，不含票数；结果缓存只存这部分
type CandidateProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
}

// Ballot 一场选举全部候选人的名片
type Ballot struct {
	Candidates []CandidateProfile `json:"candidates"`
}

type CandidateResult struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Party string `json:"party"`
	Votes int64  `json:"votes"`
}

type ConstituencyResult struct {
	Constituency string            `json:"constituency"`
	Candidates   []CandidateResult `json:"candidates"`
}

type Results struct {
	Status  Status               `json:"status"`
	Results []ConstituencyResult `json:"results"`
}

type ConstituencyVotes struct {
	Constituency string `json:"constituency"`
	Votes        int64  `json:"votes"`
}

type VoteStatistics struct {
	TotalVotes          int64               `json:"totalVotes"`
	VotesByConstituency []ConstituencyVotes `json:"votesByConstituency"`
	TotalVoters         int64               `json:"totalVoters"`
	VoterTurnout        string              `json:"voterTurnout"`
}

// FormatTurnout renders votes/voters as a percentage with two decimals.
// The baseline is every voter in the system, not only those enrolled in the election.
func FormatTurnout(votes, voters int64) string {
	if voters <= 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(votes)/float64(voters)*100)
}
