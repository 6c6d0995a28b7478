package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

type User struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string        `bson:"email" json:"email"`
	Name         string        `bson:"name" json:"name"`
	PasswordHash string        `bson:"passwordHash,omitempty" json:"-"` // empty for identity-provider accounts
	IsGoogle     bool          `bson:"isGoogle" json:"isGoogle"`
	Role         Role          `bson:"role" json:"role"`
	RefreshToken string        `bson:"refreshToken,omitempty" json:"-"` // single active value, rotated on each refresh
	Bio          string        `bson:"bio,omitempty" json:"bio"`
	Country      string        `bson:"country,omitempty" json:"country"`
	Avatar       string        `bson:"avatar,omitempty" json:"avatar"`

	// Advisory display counters, updated best-effort alongside content
	// mutations. Nothing may depend on these being exact.
	StoriesWritten int `bson:"storiesWritten" json:"storiesWritten"`
	PhotosShared   int `bson:"photosShared" json:"photosShared"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
