package store

import (
	"context"
	"fmt"
)

// User is the object representing a messenger user.
type User struct {
	ID        int32
	CreatedTs int64

	// MessengerID is the identifier assigned by the bot platform.
	MessengerID string
	Nickname    string
	// HomeAddress is used as the travel origin for event logistics.
	// Empty means the user has not set one yet.
	HomeAddress string
}

// FindUser is the find condition for user.
type FindUser struct {
	ID          *int32
	MessengerID *string
}

// UpdateUser is the update request for user.
type UpdateUser struct {
	ID          int32
	Nickname    *string
	HomeAddress *string
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// ListUsers lists users with filter.
func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser gets a user by find condition. Returns nil when not found.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.MessengerID == nil {
		if value, ok := s.userCache.Get(ctx, userCacheKey(*find.ID)); ok {
			if user, ok := value.(*User); ok {
				return user, nil
			}
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}

	user := list[0]
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// GetOrCreateUserByMessengerID resolves the local user for a messenger
// identity, creating the record on first contact.
func (s *Store) GetOrCreateUserByMessengerID(ctx context.Context, messengerID, nickname string) (*User, error) {
	user, err := s.GetUser(ctx, &FindUser{MessengerID: &messengerID})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.CreateUser(ctx, &User{
		MessengerID: messengerID,
		Nickname:    nickname,
	})
}

// UpdateUser updates a user.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}
