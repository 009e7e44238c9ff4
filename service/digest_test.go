package service

import (
	"context"
	"testing"
	"time"

	"github.com/stackshelf/backend/models"
	"github.com/stackshelf/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	password string
	subject  string
	body     string
}

func newTestDigest(s *memStore, encKey []byte) (*DigestService, *[]sentMail) {
	now := fixedNow()
	s.addBook("Clean Code", withStats(5, 7, now.Add(-24*time.Hour), now.Add(-24*time.Hour)))
	gen := newTestGenerator(s)
	cache := newTestCache(s, gen)

	d := NewDigestService(s, cache, s, encKey, 10)
	d.Now = fixedNow
	var sent []sentMail
	d.send = func(cfg *models.DigestConfig, password, subject, body string) error {
		sent = append(sent, sentMail{password: password, subject: subject, body: body})
		return nil
	}
	return d, &sent
}

func enabledConfig() *models.DigestConfig {
	return &models.DigestConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPUser:     "digest@example.com",
		SMTPPassword: "s3cret",
		SenderMail:   "digest@example.com",
		Recipients:   []string{"team@example.com"},
		Enabled:      true,
	}
}

func TestDigestSend_NotConfigured(t *testing.T) {
	s := newMemStore()
	d, sent := newTestDigest(s, nil)

	err := d.Send(context.Background(), "run-1")

	assert.ErrorIs(t, err, ErrDigestNotConfigured)
	assert.Empty(t, *sent)
}

func TestDigestSend_DisabledConfig(t *testing.T) {
	s := newMemStore()
	cfg := enabledConfig()
	cfg.Enabled = false
	s.digestCfg = cfg
	d, sent := newTestDigest(s, nil)

	assert.ErrorIs(t, d.Send(context.Background(), "run-1"), ErrDigestNotConfigured)
	assert.Empty(t, *sent)
}

func TestDigestSend_ComposesRankingsAndLogs(t *testing.T) {
	s := newMemStore()
	s.digestCfg = enabledConfig()
	d, sent := newTestDigest(s, nil)

	require.NoError(t, d.Send(context.Background(), "run-42"))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Contains(t, mail.body, "Most mentioned this week")
	assert.Contains(t, mail.body, "Trending now")
	assert.Contains(t, mail.body, "Clean Code")
	assert.Contains(t, mail.subject, "2026-08-20")
	assert.Equal(t, "s3cret", mail.password)

	require.Len(t, s.digestLogs, 1)
	assert.Equal(t, "run-42", s.digestLogs[0].BatchRunID)
	assert.Equal(t, []string{"team@example.com"}, s.digestLogs[0].Recipients)
}

func TestDigestSend_DecryptsStoredPassword(t *testing.T) {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	encrypted, err := utils.Encrypt([]byte("s3cret"), key)
	require.NoError(t, err)

	s := newMemStore()
	cfg := enabledConfig()
	cfg.SMTPPassword = encrypted
	s.digestCfg = cfg
	d, sent := newTestDigest(s, key)

	require.NoError(t, d.Send(context.Background(), "run-1"))
	require.Len(t, *sent, 1)
	assert.Equal(t, "s3cret", (*sent)[0].password)
}
