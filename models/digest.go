package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DigestConfig holds the SMTP settings for the post-batch ranking digest
// email. A single document exists per deployment; SMTPPassword is stored
// encrypted at rest when an encryption key is configured.
type DigestConfig struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SMTPHost     string             `bson:"smtpHost" json:"smtpHost"`
	SMTPPort     int                `bson:"smtpPort" json:"smtpPort"`
	SMTPUser     string             `bson:"smtpUser" json:"smtpUser"`
	SMTPPassword string             `bson:"smtpPassword" json:"smtpPassword"`
	SenderMail   string             `bson:"senderMail" json:"senderMail"`
	Recipients   []string           `bson:"recipients" json:"recipients"`
	Enabled      bool               `bson:"enabled" json:"enabled"`
}

// DigestLog records one digest email send.
type DigestLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchRunID string             `bson:"batchRunId,omitempty" json:"batchRunId,omitempty"`
	Recipients []string           `bson:"recipients" json:"recipients"`
	Subject    string             `bson:"subject" json:"subject"`
	SentAt     time.Time          `bson:"sentAt" json:"sentAt"`
}
