package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrInvalidToken はセッショントークンの形式または署名が不正な場合に返す
var ErrInvalidToken = errors.New("invalid session token")

// CreateSessionToken はユーザーIDから署名付きセッショントークンを生成する
func CreateSessionToken(userID string, secret []byte) string {
	return base64.URLEncoding.EncodeToString([]byte(userID)) + "." + sign([]byte(userID), secret)
}

// VerifySessionToken はトークンを検証しユーザーIDを返す
func VerifySessionToken(token string, secret []byte) (string, error) {
	payloadPart, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", ErrInvalidToken
	}
	payload, err := base64.URLEncoding.DecodeString(payloadPart)
	if err != nil || len(payload) == 0 {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(sign(payload, secret)), []byte(sig)) {
		return "", ErrInvalidToken
	}
	return string(payload), nil
}

func sign(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

const sessionCookieName = "published_session"
const minSecretLen = 32

// SessionCookieName はセッションクッキー名
func SessionCookieName() string {
	return sessionCookieName
}

// SessionSecretBytes は文字列からセッション署名用のバイト列を生成する（最低32バイト）
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}
