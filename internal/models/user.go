package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an application user record as stored in the users collection.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username   string             `bson:"username" json:"username"`
	Password   string             `bson:"password" json:"-"`
	DateJoined time.Time          `bson:"dateJoined" json:"dateJoined"`
}

// SafeUser is the public view of a user. It is the only user shape returned by the API.
type SafeUser struct {
	ID         primitive.ObjectID `json:"_id"`
	Username   string             `json:"username"`
	DateJoined time.Time          `json:"dateJoined"`
}

// Credentials is a transient username/password pair used for login.
type Credentials struct {
	Username string
	Password string
}

// SafeViewer is implemented by every user-shaped record that can be exposed publicly.
type SafeViewer interface {
	Safe() SafeUser
}

// Safe returns a copy of the user without the credential field.
func (u User) Safe() SafeUser {
	return SafeUser{
		ID:         u.ID,
		Username:   u.Username,
		DateJoined: u.DateJoined,
	}
}

// Safe returns s unchanged so conversion can be applied any number of times.
func (s SafeUser) Safe() SafeUser {
	return s
}
