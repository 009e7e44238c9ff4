package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mention links one book to one article with the confidence the matcher
// assigned. At most one mention exists per (bookId, articleId) pair; the
// mentions collection carries a unique compound index enforcing this.
// Mentions are inserted once and never updated.
type Mention struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookID      primitive.ObjectID `bson:"bookId" json:"bookId"`
	ArticleID   primitive.ObjectID `bson:"articleId" json:"articleId"`
	MatchedText string             `bson:"matchedText" json:"matchedText"`
	Confidence  float64            `bson:"confidence" json:"confidence"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
