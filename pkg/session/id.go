package session

import (
	"fmt"

	"github.com/aretw0/gss/pkg/domain"
	"github.com/google/uuid"
)

// MaxIDLength bounds session identifiers supplied by clients.
const MaxIDLength = 128

// NewID returns a fresh, time-ordered session identifier.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidateID accepts 1 to MaxIDLength characters from [A-Za-z0-9._:-].
// IDs end up in file names and Redis keys, so nothing else is allowed.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", domain.ErrInvalidSessionID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: longer than %d characters", domain.ErrInvalidSessionID, MaxIDLength)
	}
	if id == "." || id == ".." {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSessionID, id)
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.' || c == ':':
		default:
			return fmt.Errorf("%w: character %q not allowed", domain.ErrInvalidSessionID, c)
		}
	}
	return nil
}
