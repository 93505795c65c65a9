package auth

import (
	"context"

	"github.com/Triet1705/client-hub-backend/services/user"
	"github.com/google/uuid"
)

// Principal is the authenticated identity of one request. It is produced
// exactly once at the authentication boundary (credential verification or
// bearer-token validation) and passed down explicitly; nothing outside that
// boundary mutates it.
type Principal struct {
	UserID         uuid.UUID
	Email          string
	Role           user.Role
	TenantID       string
	ImpersonatorID *uuid.UUID
}

func PrincipalFromUser(u *user.User) Principal {
	return Principal{
		UserID:   u.ID,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: u.TenantID,
	}
}

// Impersonated reports whether this identity was minted by an admin on
// behalf of another user.
func (p Principal) Impersonated() bool {
	return p.ImpersonatorID != nil
}

type principalKey struct{}

// ContextWithPrincipal attaches the request principal to ctx. Only the
// bearer middleware and the async propagator call this.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
