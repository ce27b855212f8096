// Package password hashes and verifies administrator passwords.
//
// New hashes are argon2id. Hashes written by the old provisioning script are
// bcrypt and remain verifiable; the format is picked from the hash prefix.
package password

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var ErrUnknownHashFormat = errors.New("unknown password hash format")

type Hasher struct {
	params *argon2id.Params
}

func New(params *argon2id.Params) *Hasher {
	if params == nil {
		params = argon2id.DefaultParams
	}
	return &Hasher{params: params}
}

// Hash 生成 argon2id hash
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := argon2id.CreateHash(password, h.params)
	if err != nil {
		return "", fmt.Errorf("create hash: %w", err)
	}
	return hash, nil
}

// Verify 校验密码；不匹配返回 (false, nil)，hash 损坏或格式未知时返回错误
func (h *Hasher) Verify(password, hash string) (bool, error) {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		match, _, err := argon2id.CheckHash(password, hash)
		if err != nil {
			return false, fmt.Errorf("check argon2id hash: %w", err)
		}
		return match, nil

	case isBcrypt(hash):
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("check bcrypt hash: %w", err)

	default:
		return false, ErrUnknownHashFormat
	}
}

// NeedsRehash 非 argon2id 的 hash 在下次校验成功后应当重新生成
func (h *Hasher) NeedsRehash(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

func isBcrypt(hash string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}
	return false
}
