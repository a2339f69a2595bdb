package auth

import (
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

// Owned is a resource with a single immutable owner.
type Owned interface {
	OwnerID() uint
}

// AuthorizeMutation allows caller to update or delete resource only when the
// caller owns it. resource must be the snapshot loaded inside the transaction
// that performs the mutation.
func AuthorizeMutation(caller Identity, resource Owned) error {
	if caller.UserID == 0 || caller.UserID != resource.OwnerID() {
		return apperrors.ErrForbidden
	}
	return nil
}
