package ports

import "context"

// RoleAdmin is required for carrier settings changes and shipment cancellation.
const RoleAdmin = "admin"

// Principal is an authenticated caller.
type Principal struct {
	Subject string
	Roles   []string
}

func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authorizer verifies bearer credentials issued by the platform's auth service.
type Authorizer interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}
