package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/smilepoint-dental/contact-service/internal/mailer"
	"github.com/smilepoint-dental/contact-service/internal/ratelimit"
)

type stubVerifier struct {
	ok     bool
	called int
}

func (s *stubVerifier) Verify(context.Context, string) bool {
	s.called++
	return s.ok
}

type stubDispatcher struct {
	err    error
	panics bool
	sent   []mailer.Submission
}

func (s *stubDispatcher) Dispatch(_ context.Context, sub mailer.Submission) error {
	if s.panics {
		panic("dispatcher exploded")
	}
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sub)
	return nil
}

type recordingLimiter struct {
	keys []string
	deny map[string]bool
}

func (r *recordingLimiter) Allow(_ context.Context, key string) bool {
	r.keys = append(r.keys, key)
	return !r.deny[key]
}

func validRequest() Request {
	return Request{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Message:   "Hello, I'd like to book.",
		TimeSpent: 12,
	}
}

func newTestPipeline(verifier *stubVerifier, limiter ratelimit.Store, dispatcher *stubDispatcher) *Pipeline {
	return NewPipeline(verifier, limiter, dispatcher, nil, nil, 5)
}

func TestProcessSuccess(t *testing.T) {
	dispatcher := &stubDispatcher{}
	p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, dispatcher)

	result := p.Process(context.Background(), validRequest(), "203.0.113.9")

	if result.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.Status)
	}
	if result.Message != ThankYouMessage {
		t.Fatalf("expected thank-you message, got %q", result.Message)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(dispatcher.sent))
	}
}

func TestProcessRejectsInvalidBeforeExternalCalls(t *testing.T) {
	verifier := &stubVerifier{ok: true}
	dispatcher := &stubDispatcher{}
	limiter := &recordingLimiter{}
	p := newTestPipeline(verifier, limiter, dispatcher)

	req := validRequest()
	req.Email = ""
	req.RecaptchaToken = "tok"

	result := p.Process(context.Background(), req, "203.0.113.9")

	if result.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", result.Status)
	}
	if verifier.called != 0 {
		t.Fatal("captcha must not be invoked for an invalid submission")
	}
	if len(limiter.keys) != 0 {
		t.Fatal("rate limiter must not be consulted for an invalid submission")
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("dispatcher must not be invoked for an invalid submission")
	}
}

func TestProcessTimingGateBoundary(t *testing.T) {
	tests := []struct {
		timeSpent float64
		status    int
	}{
		{4.9, http.StatusBadRequest},
		{5.0, http.StatusOK},
		{12, http.StatusOK},
		{0, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("timeSpent=%v", tt.timeSpent), func(t *testing.T) {
			p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, &stubDispatcher{})
			req := validRequest()
			req.TimeSpent = tt.timeSpent
			result := p.Process(context.Background(), req, "203.0.113.9")
			if result.Status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, result.Status)
			}
		})
	}
}

func TestProcessSkipsCaptchaWithoutToken(t *testing.T) {
	verifier := &stubVerifier{ok: false} // would fail if consulted
	p := newTestPipeline(verifier, &recordingLimiter{}, &stubDispatcher{})

	result := p.Process(context.Background(), validRequest(), "203.0.113.9")

	if result.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.Status)
	}
	if verifier.called != 0 {
		t.Fatal("captcha must be skipped when no token is supplied")
	}
}

func TestProcessCaptchaFailure(t *testing.T) {
	verifier := &stubVerifier{ok: false}
	dispatcher := &stubDispatcher{}
	p := newTestPipeline(verifier, &recordingLimiter{}, dispatcher)

	req := validRequest()
	req.RecaptchaToken = "tok"
	result := p.Process(context.Background(), req, "203.0.113.9")

	if result.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", result.Status)
	}
	if verifier.called != 1 {
		t.Fatalf("expected one captcha check, got %d", verifier.called)
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("dispatcher must not run after captcha failure")
	}
}

func TestProcessRateLimitKeys(t *testing.T) {
	limiter := &recordingLimiter{}
	p := newTestPipeline(&stubVerifier{ok: true}, limiter, &stubDispatcher{})

	req := validRequest()
	req.Email = "Jane@Example.COM"
	p.Process(context.Background(), req, "203.0.113.9")

	if len(limiter.keys) != 2 {
		t.Fatalf("expected two limiter checks, got %v", limiter.keys)
	}
	if limiter.keys[0] != "ip:203.0.113.9" {
		t.Fatalf("unexpected ip key %q", limiter.keys[0])
	}
	if limiter.keys[1] != "email:jane@example.com" {
		t.Fatalf("email key must be lowercased, got %q", limiter.keys[1])
	}
}

func TestProcessUnknownIPFallback(t *testing.T) {
	limiter := &recordingLimiter{}
	p := newTestPipeline(&stubVerifier{ok: true}, limiter, &stubDispatcher{})

	p.Process(context.Background(), validRequest(), "")

	if limiter.keys[0] != "ip:unknown" {
		t.Fatalf("expected unknown ip key, got %q", limiter.keys[0])
	}
}

func TestProcessRateLimited(t *testing.T) {
	limiter := &recordingLimiter{deny: map[string]bool{"ip:203.0.113.9": true}}
	dispatcher := &stubDispatcher{}
	p := newTestPipeline(&stubVerifier{ok: true}, limiter, dispatcher)

	result := p.Process(context.Background(), validRequest(), "203.0.113.9")

	if result.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", result.Status)
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("dispatcher must not run after rate-limit denial")
	}
}

func TestProcessSharedEmailBucketAcrossIPs(t *testing.T) {
	limiter := ratelimit.NewMemoryStore(5, 10*time.Minute)
	p := newTestPipeline(&stubVerifier{ok: true}, limiter, &stubDispatcher{})

	// Five submissions from five different IPs, same email address.
	for i := 0; i < 5; i++ {
		req := validRequest()
		result := p.Process(context.Background(), req, fmt.Sprintf("203.0.113.%d", i+1))
		if result.Status != http.StatusOK {
			t.Fatalf("submission %d: expected 200, got %d", i+1, result.Status)
		}
	}

	// The sixth is denied by the shared email bucket even though its IP has
	// only been seen once.
	result := p.Process(context.Background(), validRequest(), "203.0.113.6")
	if result.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 from shared email bucket, got %d", result.Status)
	}
}

func TestProcessSixthSubmissionRateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryStore(5, 10*time.Minute)
	p := newTestPipeline(&stubVerifier{ok: true}, limiter, &stubDispatcher{})

	for i := 1; i <= 5; i++ {
		result := p.Process(context.Background(), validRequest(), "203.0.113.9")
		if result.Status != http.StatusOK {
			t.Fatalf("submission %d: expected 200, got %d", i, result.Status)
		}
	}
	result := p.Process(context.Background(), validRequest(), "203.0.113.9")
	if result.Status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on 6th submission, got %d", result.Status)
	}
}

func TestProcessDispatchFailure(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.New("provider down")}
	p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, dispatcher)

	result := p.Process(context.Background(), validRequest(), "203.0.113.9")

	if result.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", result.Status)
	}
	if result.Message != GenericFailureMessage {
		t.Fatalf("expected generic message, got %q", result.Message)
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	dispatcher := &stubDispatcher{panics: true}
	p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, dispatcher)

	result := p.Process(context.Background(), validRequest(), "203.0.113.9")

	if result.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", result.Status)
	}
	if result.Message != GenericFailureMessage {
		t.Fatalf("expected generic message after panic, got %q", result.Message)
	}
}

func TestProcessRejectionsShareOneGenericMessage(t *testing.T) {
	limiter := &recordingLimiter{deny: map[string]bool{"ip:203.0.113.9": true}}

	cases := map[string]Result{}

	// Validation failure.
	p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, &stubDispatcher{})
	req := validRequest()
	req.Name = "John3"
	cases["validation"] = p.Process(context.Background(), req, "203.0.113.9")

	// Timing failure.
	req = validRequest()
	req.TimeSpent = 1
	cases["timing"] = p.Process(context.Background(), req, "203.0.113.9")

	// Captcha failure.
	req = validRequest()
	req.RecaptchaToken = "tok"
	p = newTestPipeline(&stubVerifier{ok: false}, &recordingLimiter{}, &stubDispatcher{})
	cases["captcha"] = p.Process(context.Background(), req, "203.0.113.9")

	// Rate limit and dispatch failures.
	p = newTestPipeline(&stubVerifier{ok: true}, limiter, &stubDispatcher{})
	cases["rate_limit"] = p.Process(context.Background(), validRequest(), "203.0.113.9")
	p = newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, &stubDispatcher{err: errors.New("boom")})
	cases["dispatch"] = p.Process(context.Background(), validRequest(), "203.0.113.9")

	for name, result := range cases {
		if result.Message != GenericFailureMessage {
			t.Fatalf("%s rejection leaked a distinct message: %q", name, result.Message)
		}
	}
}

func TestProcessForwardsTrimmedFields(t *testing.T) {
	dispatcher := &stubDispatcher{}
	p := newTestPipeline(&stubVerifier{ok: true}, &recordingLimiter{}, dispatcher)

	req := validRequest()
	req.Name = "  Jane Doe  "
	req.Branch = " Ruimsig "
	p.Process(context.Background(), req, "203.0.113.9")

	sent := dispatcher.sent[0]
	if sent.Name != "Jane Doe" {
		t.Fatalf("expected trimmed name, got %q", sent.Name)
	}
	if sent.Branch != "Ruimsig" {
		t.Fatalf("expected trimmed branch, got %q", sent.Branch)
	}
}
