package store

import (
	"context"
	"fmt"

	"github.com/supabase-community/supabase-go"

	"pongping/internal/model"
)

const usersTable = "users"

// Supabase stores users through the PostgREST API of a Supabase project.
type Supabase struct {
	client *supabase.Client
}

func NewSupabase(url, key string) (*Supabase, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &Supabase{client: client}, nil
}

// UpsertUser merges on the id column. The PostgREST client has no context
// support, so ctx is only checked before the request.
func (s *Supabase) UpsertUser(ctx context.Context, user model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(usersTable).Upsert(user, "id", "minimal", "").Execute()
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", user.ID, err)
	}
	return nil
}

func (s *Supabase) CountUsers(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	_, count, err := s.client.From(usersTable).Select("id", "exact", true).Execute()
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
