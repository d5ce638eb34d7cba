// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/storefront/internal/platform/apperr"
	"github.com/taibuivan/storefront/internal/platform/constants"
	"github.com/taibuivan/storefront/internal/platform/ctxutil"
	"github.com/taibuivan/storefront/internal/platform/respond"
	"github.com/taibuivan/storefront/internal/platform/sec"
)

// AccessVerifier resolves a bearer access token to its claims.
//
// Defining it here keeps the middleware free of the auth package, so tests can
// inject a stub.
type AccessVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the access token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, verify it via [AccessVerifier]; any failure answers 401.
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// 1. Anonymous access
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Format validation
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, constants.AuthorizationScheme) || token == "" {
				respond.Error(writer, request, apperr.AuthenticationFailed())
				return
			}

			// 3. Token verification
			claims, err := verifier.VerifyAccessToken(request.Context(), strings.TrimSpace(token))
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// 4. Context injection
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.AuthenticationFailed())
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRight blocks callers whose role does not grant every listed right.
//
// It implies [RequireAuth].
func RequireRight(rights ...sec.Right) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.AuthenticationFailed())
				return
			}

			if !sec.UserRole(claims.Role).Can(rights...) {
				respond.Error(writer, request, apperr.Forbidden("Forbidden"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RequireSelfOrRight lets a request through when the URL parameter named
// param equals the caller's own account id, or when the caller's role grants
// every listed right.
//
// It implies [RequireAuth]. The route must declare param.
func RequireSelfOrRight(param string, rights ...sec.Right) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())
			if claims == nil {
				respond.Error(writer, request, apperr.AuthenticationFailed())
				return
			}

			isSelf := claims.Subject != "" && chi.URLParam(request, param) == claims.Subject
			if !isSelf && !sec.UserRole(claims.Role).Can(rights...) {
				respond.Error(writer, request, apperr.Forbidden("Forbidden"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
