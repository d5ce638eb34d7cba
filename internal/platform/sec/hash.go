// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// timingFillerHash is compared against when no account exists so that a
// missing identity costs the same bcrypt work as a wrong password.
var timingFillerHash = func() []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte("storefront-timing-filler"), bcrypt.DefaultCost)
	if err != nil {
		panic("sec: failed to prepare timing filler hash: " + err.Error())
	}
	return hash
}()

// MaxPasswordBytes is the longest input bcrypt hashes.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned for passwords over [MaxPasswordBytes].
var ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")

// HashPassword hashes a plain-text password using the bcrypt algorithm.
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}

// BurnPasswordCheck performs a bcrypt comparison whose result is discarded.
func BurnPasswordCheck(plainTextPassword string) {
	_ = bcrypt.CompareHashAndPassword(timingFillerHash, []byte(plainTextPassword))
}

// HashToken returns the hex SHA-256 digest of a credential value.
//
// Credential stores persist only this digest, never the presented value.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
