package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Prompt is a user-owned prompt text
// Collection: prompts
type Prompt struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	UserID    string             `bson:"user_id" json:"userId"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Tags      []string           `bson:"tags" json:"tags"`
	SourceURL string             `bson:"source_url,omitempty" json:"sourceUrl,omitempty"`
}

// HasTag reports whether tag is attached to the prompt.
func (p Prompt) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
