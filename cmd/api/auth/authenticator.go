package auth

import (
	"errors"
	"strings"
)

// DevUserID 는 개발용 토큰이 매핑되는 사용자 id 다.
const DevUserID = "dev-user-id"

const devTokenPrefix = "dev-token-"

var devTokens = map[string]struct{}{
	"dev-jwt-token":           {},
	"fake-jwt-token-for-demo": {},
}

var ErrInvalidToken = errors.New("invalid_token")

// Authenticator 는 bearer 토큰을 사용자 id 로 바꾼다.
// allowDev 가 켜져 있을 때만 개발용 토큰을 받아들인다.
type Authenticator struct {
	jwt      *JWTManager
	allowDev bool
}

func NewAuthenticator(jwt *JWTManager, allowDev bool) *Authenticator {
	return &Authenticator{jwt: jwt, allowDev: allowDev}
}

func IsDevToken(token string) bool {
	if _, ok := devTokens[token]; ok {
		return true
	}
	return strings.HasPrefix(token, devTokenPrefix) && len(token) > len(devTokenPrefix)
}

func (a *Authenticator) Authenticate(token string) (string, error) {
	if a.allowDev && IsDevToken(token) {
		return DevUserID, nil
	}
	if a.jwt == nil {
		return "", ErrInvalidToken
	}
	userID, err := a.jwt.Parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return userID, nil
}
