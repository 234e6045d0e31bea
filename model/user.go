package model

import (
	"strings"
	"time"
)

type User struct {
	Email          string    `json:"email" firestore:"email" bson:"_id"`
	FirstName      string    `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName       string    `json:"lastName" firestore:"lastName" bson:"lastName"`
	Role           Role      `json:"role" firestore:"role" bson:"role"`
	SignedUpEvents []string  `json:"signedUpEvents" firestore:"signedUpEvents" bson:"signedUpEvents"`
	PostedEvents   []string  `json:"postedEvents" firestore:"postedEvents" bson:"postedEvents"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

func (u User) Clone() User {
	u.SignedUpEvents = append([]string(nil), u.SignedUpEvents...)
	u.PostedEvents = append([]string(nil), u.PostedEvents...)
	return u
}

// NormalizeEmail is the key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
