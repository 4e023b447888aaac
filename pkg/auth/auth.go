package auth

import (
	"context"
	"os"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const (
	RoleBorrower  = "BORROWER"
	RoleLibrarian = "LIBRARIAN"
)

var JWTKey = jwtKey()

func jwtKey() []byte {
	if v := os.Getenv("JWT_KEY"); v != "" {
		return []byte(v)
	}
	return []byte("library-backend-secret")
}

type Claims struct {
	Profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"profile"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated caller, resolved by the HTTP layer and
// passed explicitly into service operations.
type Principal struct {
	Username string
	Role     string
}

func (p Principal) IsLibrarian() bool {
	return p.Role == RoleLibrarian
}

var ErrNoPrincipal = errors.New("no authenticated principal")

type ctxKey int

const principalKey ctxKey = iota

func SetAuthContext(ctx context.Context, username, role string) context.Context {
	return context.WithValue(ctx, principalKey, Principal{Username: username, Role: role})
}

func FromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.Username == "" {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}
