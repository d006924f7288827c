package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

var (
	voterIDMin  = big.NewInt(1_000_000_000)
	voterIDSpan = big.NewInt(9_000_000_000)
)

// NewVoterID 返回 [1000000000, 9999999999] 内的十进制串
func NewVoterID() (string, error) {
	n, err := rand.Int(rand.Reader, voterIDSpan)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Add(n, voterIDMin).Int64(), 10), nil
}
