package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	UserRoleUser UserRole = "user"
	UserRoleRoot UserRole = "root"
)

func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleRoot
}

// User is an account. Password holds the hash and is never serialized to clients.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Password  string             `bson:"password,omitempty" json:"-"`
	Role      UserRole           `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func NewUser(name, passwordHash string) User {
	return User{
		Name:     name,
		Password: passwordHash,
		Role:     UserRoleUser,
	}
}

func (u User) IsRoot() bool {
	return u.Role == UserRoleRoot
}
