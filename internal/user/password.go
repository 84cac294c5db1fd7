package user

import (
	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor. It can be lowered in tests or raised from config.
var Cost = bcrypt.DefaultCost

func HashPassword(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
}
