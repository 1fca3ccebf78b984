package auth

import (
	"github.com/google/uuid"

	"github.com/vipul69-eng/leadbook/pkg/db/models"
)

// Session is the authenticated caller's identity as recovered from a verified
// token. Handlers attach it to the request context.
type Session struct {
	Sub      uuid.UUID
	Username string
	Role     models.Role
}

func (s Session) IsAdmin() bool {
	return s.Role == models.RoleAdmin
}
