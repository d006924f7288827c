package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("auth: invalid token")
	ErrTokenExpired = errors.New("auth: token expired")
)

// Claims 只放鉴权需要的最小信息；hasVoted 等状态每次从库里取
type Claims struct {
	UID          string `json:"uid"`
	Role         string `json:"role"` // voter / leader / admin
	Constituency string `json:"constituency,omitempty"`
	jwt.RegisteredClaims
}

type JWTer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewJWTer(secret, issuer string, ttl time.Duration) *JWTer {
	return &JWTer{secret: []byte(secret), issuer: issuer, ttl: ttl, leeway: time.Minute, now: time.Now}
}

// WithClock 测试用
func (j *JWTer) WithClock(now func() time.Time) *JWTer {
	cp := *j
	cp.now = now
	return &cp
}

// Issue 签发 HS256 令牌，jti 随机
func (j *JWTer) Issue(uid, role, constituency string) (string, error) {
	now := j.now()
	c := Claims{
		UID:          uid,
		Role:         role,
		Constituency: constituency,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    j.issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign: %w", err)
	}
	return s, nil
}

// Parse 校验签名、签发方与有效期；过期返回 ErrTokenExpired，其余失败统一 ErrTokenInvalid
func (j *JWTer) Parse(raw string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.leeway),
		jwt.WithTimeFunc(j.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	case c.UID == "":
		return nil, ErrTokenInvalid
	}
	return &c, nil
}
