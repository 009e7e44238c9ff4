package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Article is a fetched external post. Immutable once ingested; SourceID is
// the upstream identifier used to skip re-inserting the same post.
type Article struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceID    string             `bson:"sourceId" json:"sourceId"`
	Title       string             `bson:"title" json:"title"`
	Body        string             `bson:"body,omitempty" json:"body,omitempty"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	PublishedAt time.Time          `bson:"publishedAt" json:"publishedAt"`
	FetchedAt   time.Time          `bson:"fetchedAt" json:"fetchedAt"`
}
