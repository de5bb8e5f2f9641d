package contact

import "errors"

var (
	// ErrInvalidSubmission covers bad shape, content or timing.
	ErrInvalidSubmission = errors.New("contact: invalid submission")

	// ErrCaptchaFailed is returned when a supplied CAPTCHA token does not verify.
	ErrCaptchaFailed = errors.New("contact: captcha verification failed")

	// ErrRateLimited is returned when either the IP or email quota is exhausted.
	ErrRateLimited = errors.New("contact: rate limit exceeded")

	// ErrDispatchFailed covers provider failures and missing credentials alike.
	ErrDispatchFailed = errors.New("contact: dispatch failed")
)
