package utils

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PostDateLayout is how a post's creation date is stamped, e.g. "March 05, 2024".
const PostDateLayout = "January 02, 2006"

// GenerateToken signs a session cookie value. The token carries only the
// opaque session id and its expiry.
func GenerateToken(signKey []byte, sessionID string, expires time.Time) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"exp": expires.Unix(),
	})
	s, err := t.SignedString(signKey)
	if err != nil {
		return "", err
	}
	return s, nil
}

func FormatPostDate(t time.Time) string {
	return t.Format(PostDateLayout)
}

// Gravatar returns the avatar url for email: 100px, g-rated, retro fallback.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("http://www.gravatar.com/avatar/%s?s=100&d=retro&r=g", hex.EncodeToString(sum[:]))
}
