package gateway

import "strings"

const bearerPrefix = "bearer "

// Token 管理接口的凭证，只有两种形态
type Token interface {
	isToken()
}

// PerAccountToken 形如 identifier:secret ，按账号校验
type PerAccountToken struct {
	Identifier string
	Secret     string
}

// SharedSecretToken 不含冒号，与旧版共享密码比对
type SharedSecretToken struct {
	Secret string
}

func (PerAccountToken) isToken()   {}
func (SharedSecretToken) isToken() {}

// ParseToken 以第一个冒号区分两种形态，identifier 会被规范化
func ParseToken(raw string) Token {
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return PerAccountToken{
			Identifier: strings.ToLower(strings.TrimSpace(raw[:i])),
			Secret:     raw[i+1:],
		}
	}
	return SharedSecretToken{Secret: raw}
}

// BearerToken 从 Authorization 头中取出 token
func BearerToken(header string) (string, bool) {
	v := strings.TrimSpace(header)
	if len(v) < len(bearerPrefix) || !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(v[len(bearerPrefix):]), true
}
