package ikuai

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
)

const passwordSalt = "salt_11"

// Credentials are the login fields the router expects. The password itself is
// never sent: only its MD5 hash and a salted base64 form.
type Credentials struct {
	Username           string
	PasswordHash       string
	PasswordObfuscated string
}

// EncodePassword returns md5(password) as lowercase hex and base64("salt_11" + password).
func EncodePassword(password string) (hash, obfuscated string) {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:]), base64.StdEncoding.EncodeToString([]byte(passwordSalt + password))
}

// NewCredentials derives both password encodings from a plain password.
func NewCredentials(username, password string) Credentials {
	hash, obfuscated := EncodePassword(password)
	return Credentials{
		Username:           username,
		PasswordHash:       hash,
		PasswordObfuscated: obfuscated,
	}
}

type loginBody struct {
	Username string `json:"username"`
	Passwd   string `json:"passwd"`
	Pass     string `json:"pass"`
}

func (c Credentials) loginBody() loginBody {
	return loginBody{
		Username: c.Username,
		Passwd:   c.PasswordHash,
		Pass:     c.PasswordObfuscated,
	}
}
