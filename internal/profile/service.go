package profile

import (
	"context"
	"sort"
	"strings"

	"github.com/unilinkhq/unilink/internal/domain/user"
)

// UserStore is the slice of the users repo the profile service needs. Kept
// small so tests can fake it.
type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, fields map[string]any) (user.User, error)
}

type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Get returns the full stored record for one user.
func (s *Service) Get(ctx context.Context, userID string) (user.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update applies a caller-shaped partial update. The payload is a raw JSON
// object decoded into a map on purpose: unknown-field and protected-field
// detection need the original key set, so we never bind straight into the
// user struct.
//
// Pipeline: protected-field rejection -> allow-list filter -> compound-type
// check on the JSON collections -> string trim -> single-statement write that
// also bumps updatedAt.
func (s *Service) Update(ctx context.Context, userID string, payload map[string]any) (user.User, error) {
	var protected []string

	for key := range payload {
		if _, ok := protectedFields[key]; ok {
			protected = append(protected, key)
		}
	}

	if len(protected) > 0 {
		// deterministic order for error messages and tests
		sort.Strings(protected)
		return user.User{}, &ProtectedFieldsError{Fields: protected}
	}

	updates := make(map[string]any, len(payload))

	for key, value := range payload {
		if _, ok := allowedFields[key]; !ok {
			continue
		}

		updates[key] = value
	}

	for _, field := range jsonFields {
		value, ok := updates[field]

		if !ok || value == nil {
			continue
		}

		switch value.(type) {
		case map[string]any, []any:
			// compound, fine
		default:
			return user.User{}, &InvalidJSONFieldError{Field: field}
		}
	}

	if len(updates) == 0 {
		return user.User{}, ErrNoValidFields
	}

	for key, value := range updates {
		if str, ok := value.(string); ok {
			updates[key] = strings.TrimSpace(str)
		}
	}

	return s.users.UpdateProfile(ctx, userID, updates)
}
