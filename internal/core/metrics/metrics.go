package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 投票拒绝原因（label 取值固定，避免高基数）
const (
	ReasonWindow       = "window"
	ReasonRole         = "role"
	ReasonDuplicate    = "duplicate"
	ReasonCandidate    = "candidate"
	ReasonConstituency = "constituency"
	ReasonNotEnrolled  = "not_enrolled"
	ReasonNotFound     = "not_found"
	ReasonInternal     = "internal"
)

var (
	VotesCast = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "election_votes_cast_total",
		Help: "Votes recorded",
	})
	VoteRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "election_vote_rejections_total", Help: "Cast attempts refused, by reason"},
		[]string{"reason"},
	)
	StatusWritebacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "election_status_writebacks_total",
		Help: "Stored election statuses corrected on read",
	})
	// result 取值：hit / miss / error（redis 不可用时记 error 并回源）
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "election_cache_lookups_total", Help: "Results cache lookups by outcome"},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(VotesCast, VoteRejections, StatusWritebacks, CacheLookups)
}
