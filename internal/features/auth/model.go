package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account provisioned on first sign-in
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID    string             `bson:"googleId,omitempty" json:"-"`
	Email       string             `bson:"email" json:"email"`
	Username    string             `bson:"username" json:"username"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Image       string             `bson:"image" json:"image"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Profile holds the identity-provider claims a sign-in carries
type Profile struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// SessionUser is the user view attached to a session
type SessionUser struct {
	ID       string `json:"id" example:"65f1a2b3c4d5e6f708192a3b"`
	Email    string `json:"email" example:"jana@example.com"`
	Username string `json:"username" example:"janamuller"`
	Name     string `json:"name" example:"Jana Müller"`
	Image    string `json:"image" example:"https://lh3.googleusercontent.com/a/photo.jpg"`
}

// PublicProfile is what other users see
type PublicProfile struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	Image       string    `json:"image"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// GoogleAuthRequest represents the payload for Google sign-in
type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// AuthResponse represents the response after a successful sign-in
type AuthResponse struct {
	User        SessionUser `json:"user"`
	AccessToken string      `json:"accessToken"`
	IsNewUser   bool        `json:"isNewUser"`
}

// Session returns the session view of u
func (u *User) Session() SessionUser {
	return SessionUser{
		ID:       u.ID.Hex(),
		Email:    u.Email,
		Username: u.Username,
		Name:     u.DisplayName,
		Image:    u.Image,
	}
}

// Public returns the fields safe for public display
func (u *User) Public() PublicProfile {
	return PublicProfile{
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Image:       u.Image,
		JoinedAt:    u.CreatedAt,
	}
}
