package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"medbridge-service/internal/pkg/constvars"
	"medbridge-service/internal/pkg/exceptions"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/chacha20poly1305"
)

// SecretCipher seals endpoint credentials before they reach the database.
type SecretCipher struct {
	key []byte
}

func NewSecretCipher(hexKey string) (*SecretCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("endpoint secret key must be 32 bytes")
	}
	return &SecretCipher{key: key}, nil
}

// Encrypt returns base64(nonce || ciphertext). Empty input stays empty.
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", exceptions.ErrEncryptSecret(err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", exceptions.ErrEncryptSecret(err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *SecretCipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", exceptions.ErrDecryptSecret(err)
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", exceptions.ErrDecryptSecret(err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", exceptions.ErrDecryptSecret(errors.New("ciphertext too short"))
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", exceptions.ErrDecryptSecret(err)
	}
	return string(plaintext), nil
}

func GenerateAccessToken(userID, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		constvars.JWTClaimUserID: userID,
		"exp":                    time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseAccessToken validates an HS256 token and returns its user id claim.
func ParseAccessToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, exceptions.WrapWithoutError(constvars.StatusUnauthorized, constvars.ErrClientNotLoggedIn, constvars.ErrDevAuthSigningMethod)
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", exceptions.ErrTokenInvalid(err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		if userID, ok := claims[constvars.JWTClaimUserID].(string); ok && userID != "" {
			return userID, nil
		}
	}
	return "", exceptions.ErrTokenInvalid(nil)
}
