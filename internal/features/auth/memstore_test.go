package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is an in-memory UserStore enforcing the same unique keys as the
// Mongo indexes.
type memStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*User

	existsErr error
	createErr error
	// beforeCreate runs inside CreateUser before uniqueness is checked; tests
	// use it to simulate a concurrent insert winning the race.
	beforeCreate func(u *User)
	checks       []string
}

func newMemStore(users ...*User) *memStore {
	s := &memStore{users: make(map[primitive.ObjectID]*User)}
	for _, u := range users {
		s.put(u)
	}
	return s
}

func (s *memStore) put(u *User) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = u
}

func (s *memStore) CreateUser(_ context.Context, user *User) error {
	if s.beforeCreate != nil {
		s.beforeCreate(user)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return s.createErr
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return ErrUsernameTaken
		}
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	s.put(user)
	return nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, name string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == name {
			return u, nil
		}
	}
	return nil, nil
}

func (s *memStore) GetUserByID(_ context.Context, userID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[oid], nil
}

func (s *memStore) UsernameExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, name)
	if s.existsErr != nil {
		return false, s.existsErr
	}
	for _, u := range s.users {
		if u.Username == name {
			return true, nil
		}
	}
	return false, nil
}

var errStoreDown = errors.New("server selection timeout")

type stubVerifier struct {
	profile *Profile
	err     error
}

func (v stubVerifier) Verify(context.Context, string) (*Profile, error) {
	return v.profile, v.err
}

type stubAvatars struct {
	url string
	err error
	got []string
}

func (a *stubAvatars) MirrorAvatar(_ context.Context, sourceURL, publicID string) (string, error) {
	a.got = append(a.got, sourceURL+"|"+publicID)
	return a.url, a.err
}
