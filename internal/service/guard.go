package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/repository"
)

// Caller is the identity taken from a verified bearer token.
type Caller struct {
	ID      uuid.UUID
	IsAdmin bool
}

// CanMutate is the owner-or-admin rule shared by posts, comments and account deletion.
func CanMutate(callerID uuid.UUID, callerIsAdmin bool, ownerID uuid.UUID) bool {
	return callerIsAdmin || callerID == ownerID
}

// CanEditProfile has no admin override.
func CanEditProfile(callerID, targetID uuid.UUID) bool {
	return callerID == targetID
}

// storeError converts repository errors into the apperr kinds.
func storeError(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Conflict(conflict)
	default:
		return apperr.Internal(err)
	}
}
