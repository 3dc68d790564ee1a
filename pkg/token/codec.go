// Package token 负责会话凭证的签发与校验（HS256 JWT）。
// 凭证是无状态的：服务端不保存，不支持吊销；更换签名密钥会让所有已签发凭证失效。
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL 登录凭证默认有效期
const DefaultTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredential 凭证格式错误、未签名、算法不符或签名不匹配
	ErrInvalidCredential = errors.New("token: invalid credential")
	// ErrCredentialExpired 凭证已过期
	ErrCredentialExpired = errors.New("token: credential expired")
	// ErrEmptySecret 签名密钥为空
	ErrEmptySecret = errors.New("token: signing secret is empty")
)

// Claims 凭证载荷
type Claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Identity 校验通过后得到的身份
type Identity struct {
	AccountID int64
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining 返回距过期的剩余时间
func (i *Identity) Remaining(now time.Time) time.Duration {
	return i.ExpiresAt.Sub(now)
}

// Codec 凭证编解码器，签名密钥在构造时注入且之后只读
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option Codec 可选项
type Option func(*Codec)

// WithIssuer 设置签发方
func WithIssuer(issuer string) Option {
	return func(c *Codec) { c.issuer = issuer }
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec 创建凭证编解码器
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now 返回 Codec 使用的当前时间
func (c *Codec) Now() time.Time {
	return c.now()
}

// Issue 签发凭证，过期时间 = now + ttl
func (c *Codec) Issue(accountID int64, username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := c.now()
	claims := Claims{
		UserID:   accountID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(accountID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify 校验凭证
// 失败只会返回 ErrInvalidCredential 或 ErrCredentialExpired 两种错误。
func (c *Codec) Verify(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidCredential
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, parserOpts...)
	if err != nil {
		// 签名不匹配时 jwt 不会再校验过期，因此过期错误只会出现在签名合法的凭证上
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrCredentialExpired
		}
		return nil, ErrInvalidCredential
	}
	if claims.UserID <= 0 || claims.ExpiresAt == nil {
		return nil, ErrInvalidCredential
	}

	identity := &Identity{
		AccountID: claims.UserID,
		Username:  claims.Username,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		identity.IssuedAt = claims.IssuedAt.Time
	}
	return identity, nil
}
