package models

import "time"

// BatchRun records one execution of the scheduled mention batch. The ID is a
// uuid string rather than an ObjectID so log lines and the stored record
// share the same identifier.
type BatchRun struct {
	ID                string    `bson:"_id" json:"id"`
	StartedAt         time.Time `bson:"startedAt" json:"startedAt"`
	FinishedAt        time.Time `bson:"finishedAt" json:"finishedAt"`
	ArticlesFetched   int       `bson:"articlesFetched" json:"articlesFetched"`
	ArticlesProcessed int       `bson:"articlesProcessed" json:"articlesProcessed"`
	MentionsSaved     int       `bson:"mentionsSaved" json:"mentionsSaved"`
	MentionsSkipped   int       `bson:"mentionsSkipped" json:"mentionsSkipped"`
	MentionsFailed    int       `bson:"mentionsFailed" json:"mentionsFailed"`
	Error             string    `bson:"error,omitempty" json:"error,omitempty"`
}
