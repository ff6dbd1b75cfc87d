package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Алфавит сгенерированных паролей.
var passwordChars = []byte("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_+@#%*&~")

// GeneratedPasswordLen — длина паролей owner- и team-учёток.
const GeneratedPasswordLen = 24

// GeneratePassword возвращает случайный пароль фиксированной длины.
// Открытый текст отдаётся один раз при создании учётки и нигде не хранится.
func GeneratePassword() (string, error) {
	buf := make([]byte, GeneratedPasswordLen)
	max := big.NewInt(int64(len(passwordChars)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = passwordChars[n.Int64()]
	}
	return string(buf), nil
}

// HashPassword хеширует пароль bcrypt-ом для хранения.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword проверяет пароль против хеша из БД.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
