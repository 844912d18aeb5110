package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AnonymousName is stored when a commenter leaves the name empty.
const AnonymousName = "익명"

type Comment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	Name            string              `bson:"name" json:"name"`
	PostSlug        string              `bson:"postSlug" json:"postSlug"`
	ByPostAuthor    bool                `bson:"byPostAuthor" json:"byPostAuthor"`
	Password        string              `bson:"password" json:"password"`
	Email           string              `bson:"email" json:"email"`
	URL             string              `bson:"url" json:"url"`
	Body            string              `bson:"body" json:"body"`
	ParentCommentID *primitive.ObjectID `bson:"parentCommentId,omitempty" json:"parentCommentId,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// NewComment applies the document defaults.
func NewComment(postSlug, name, body string) Comment {
	if name == "" {
		name = AnonymousName
	}
	return Comment{
		Name:     name,
		PostSlug: postSlug,
		Body:     body,
	}
}

func (c Comment) IsReply() bool {
	return c.ParentCommentID != nil && !c.ParentCommentID.IsZero()
}

// ThreadComment is the client-facing shape of a comment: no email, no password.
type ThreadComment struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	PostSlug        string    `json:"postSlug"`
	ByPostAuthor    bool      `json:"byPostAuthor"`
	URL             string    `json:"url"`
	Body            string    `json:"body"`
	ParentCommentID *string   `json:"parentCommentId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Thread is a top-level comment with its replies, oldest reply first.
type Thread struct {
	ThreadComment
	Replies []ThreadComment `json:"replies"`
}
