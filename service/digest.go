package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DigestStore reads the SMTP settings and records sends.
type DigestStore interface {
	GetDigestConfig(ctx context.Context) (*models.DigestConfig, error)
	InsertDigestLog(ctx context.Context, entry *models.DigestLog) error
}

// BookFinder resolves ranking entries back to titles for the email body.
type BookFinder interface {
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
}

// RankingReader is satisfied by *RankingCache.
type RankingReader interface {
	Get(ctx context.Context, key RankingKey) (*models.Ranking, error)
}

// DigestService emails a short summary of the current weekly rankings after
// a batch run. The SMTP password is stored encrypted when EncKey is set.
type DigestService struct {
	Store    DigestStore
	Rankings RankingReader
	Books    BookFinder
	EncKey   []byte
	TopN     int
	Now      func() time.Time

	// send is swapped in tests; defaults to SMTP delivery via go-mail.
	send func(cfg *models.DigestConfig, password, subject, body string) error
}

func NewDigestService(store DigestStore, rankings RankingReader, books BookFinder, encKey []byte, topN int) *DigestService {
	if topN <= 0 {
		topN = 10
	}
	d := &DigestService{
		Store:    store,
		Rankings: rankings,
		Books:    books,
		EncKey:   encKey,
		TopN:     topN,
		Now:      time.Now,
	}
	d.send = d.sendSMTP
	return d
}

// Send composes and delivers one digest. Returns ErrDigestNotConfigured when
// no enabled config exists, so the scheduler can treat an unset digest as a
// no-op while the admin endpoint reports it.
func (d *DigestService) Send(ctx context.Context, batchRunID string) error {
	cfg, err := d.Store.GetDigestConfig(ctx)
	if err != nil {
		return fmt.Errorf("digest: load config: %w", err)
	}
	if cfg == nil || !cfg.Enabled || cfg.SMTPHost == "" || len(cfg.Recipients) == 0 {
		return ErrDigestNotConfigured
	}

	password := cfg.SMTPPassword
	if len(d.EncKey) == 32 && password != "" {
		dec, err := utils.Decrypt(password, d.EncKey)
		if err != nil {
			return fmt.Errorf("digest: decrypt smtp password: %w", err)
		}
		password = dec
	}

	body, err := d.compose(ctx)
	if err != nil {
		return err
	}
	subject := "stackshelf weekly ranking digest " + d.Now().Format("2006-01-02")

	if err := d.send(cfg, password, subject, body); err != nil {
		return fmt.Errorf("digest: send: %w", err)
	}

	entry := &models.DigestLog{
		BatchRunID: batchRunID,
		Recipients: cfg.Recipients,
		Subject:    subject,
		SentAt:     d.Now(),
	}
	if err := d.Store.InsertDigestLog(ctx, entry); err != nil {
		log.Printf("digest: save log: %v", err)
	}
	log.Printf("digest: sent to %d recipients", len(cfg.Recipients))
	return nil
}

func (d *DigestService) compose(ctx context.Context) (string, error) {
	var b strings.Builder
	sections := []struct {
		heading string
		key     RankingKey
	}{
		{"Most mentioned this week", RankingKey{Type: models.RankingTypeOverall, Period: models.RankingPeriodWeek}},
		{"Trending now", RankingKey{Type: models.RankingTypeTrending, Period: models.RankingPeriodWeek}},
	}
	for _, section := range sections {
		ranking, err := d.Rankings.Get(ctx, section.key)
		if err != nil {
			return "", fmt.Errorf("digest: %w", err)
		}
		b.WriteString(section.heading + "\n")
		b.WriteString(strings.Repeat("-", len(section.heading)) + "\n")
		n := 0
		for _, entry := range ranking.Entries {
			if n >= d.TopN {
				break
			}
			title := entry.Title
			if title == "" {
				// Snapshots written before titles were embedded.
				if book, err := d.Books.BookByID(ctx, entry.BookID); err == nil && book != nil {
					title = book.Title
				} else {
					title = entry.BookID.Hex()
				}
			}
			fmt.Fprintf(&b, "%2d. %s (%d mentions)\n", entry.Rank, title, entry.MentionCount)
			n++
		}
		if n == 0 {
			b.WriteString("no books ranked yet\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func (d *DigestService) sendSMTP(cfg *models.DigestConfig, password, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", cfg.SenderMail)
	m.SetHeader("To", cfg.Recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	dialer := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, password)
	dialer.StartTLSPolicy = mail.MandatoryStartTLS
	return dialer.DialAndSend(m)
}
