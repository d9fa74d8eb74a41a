package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/xyz-asif/promptshare/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const usersCollection = "users"

// Repository handles database interactions for the auth feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository wraps the users collection. Call EnsureIndexes before serving traffic.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{collection: db.Collection(usersCollection)}
}

// EnsureIndexes creates the unique indexes the sign-in flow relies on. The
// username index is the backstop for two concurrent first sign-ins resolving
// to the same candidate.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "googleId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

// CreateUser inserts a new user into the database
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		return classifyWriteError(err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

// GetUserByEmail finds a user by their email address
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetUserByUsername finds a user by their username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

// GetUserByID finds a user by their MongoDB ID
func (r *Repository) GetUserByID(ctx context.Context, userID string) (*User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// UsernameExists checks if a username is already taken
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"username": username}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// findOne returns nil, nil when nothing matches
func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var user User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// classifyWriteError maps duplicate key errors (code 11000) to the sentinel of
// the index that rejected the insert.
func classifyWriteError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "index: username_"):
		return fmt.Errorf("%w: %w", ErrUsernameTaken, err)
	case strings.Contains(msg, "index: email_"):
		return fmt.Errorf("%w: %w", ErrEmailTaken, err)
	default:
		return fmt.Errorf("user %w: %w", apperrors.ErrDuplicate, err)
	}
}
