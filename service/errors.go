package service

import "errors"

var (
	// ErrMalformedArticle marks article text the matcher cannot work with.
	// The batch logs it and skips the article.
	ErrMalformedArticle = errors.New("article has no usable text")

	// ErrDigestNotConfigured is returned when a digest send is requested
	// before SMTP settings have been saved or while the digest is disabled.
	ErrDigestNotConfigured = errors.New("digest is not configured")

	// ErrBatchAlreadyRunning is returned when a batch run is requested
	// while another one is still in flight.
	ErrBatchAlreadyRunning = errors.New("batch already running")
)
