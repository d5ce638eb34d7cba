// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token signing.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, JWT signing, code
// generation) from the domain logic. The auth core consumes it through the
// [TokenService] value injected at startup.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnexpectedSigningMethod is returned when a token header names an
// algorithm that differs from the one the service was configured with.
var ErrUnexpectedSigningMethod = errors.New("sec: unexpected signing method")

// AuthClaims represents the payload embedded inside a signed token.
//
// Subject carries the owning account id. Type tells access tokens apart from
// refresh and email-link tokens so that one can never stand in for another.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Role   string `json:"rol,omitempty"`
	Type   string `json:"type"`
}

// TokenService signs and parses JWTs with a single configured algorithm.
//
// Parsing checks the signature and algorithm only. Expiry is decided by the
// caller against the stored credential so that one clock governs both.
type TokenService struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
}

// NewTokenService creates an HS256 [TokenService] from a shared secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: empty signing secret")
	}

	return &TokenService{
		method:    jwt.SigningMethodHS256,
		signKey:   []byte(secret),
		verifyKey: []byte(secret),
		issuer:    issuer,
	}, nil
}

// NewRSATokenService creates an RS256 [TokenService].
// It reads RSA keys from the provided filesystem paths.
func NewRSATokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse public key: %w", err)
	}

	return NewRSATokenServiceFromKeys(privateKey, publicKey, issuer), nil
}

// NewRSATokenServiceFromKeys creates an RS256 [TokenService] from loaded keys.
func NewRSATokenServiceFromKeys(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer string) *TokenService {
	return &TokenService{
		method:    jwt.SigningMethodRS256,
		signKey:   privateKey,
		verifyKey: publicKey,
		issuer:    issuer,
	}
}

// Algorithm returns the JWT "alg" name the service signs with.
func (service *TokenService) Algorithm() string {
	return service.method.Alg()
}

// Issuer returns the configured "iss" claim value.
func (service *TokenService) Issuer() string {
	return service.issuer
}

// Sign serializes claims into a compact JWT.
// The issuer is filled in when claims leave it empty.
func (service *TokenService) Sign(claims AuthClaims) (string, error) {
	if claims.Issuer == "" {
		claims.Issuer = service.issuer
	}

	token := jwt.NewWithClaims(service.method, claims)
	signedToken, err := token.SignedString(service.signKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// Parse checks the signature of tokenString and decodes its claims.
//
// Time-based claims are not validated here.
func (service *TokenService) Parse(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != service.method.Alg() {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return service.verifyKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return claims, nil
}
