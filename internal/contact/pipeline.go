package contact

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smilepoint-dental/contact-service/internal/mailer"
	"github.com/smilepoint-dental/contact-service/internal/observability/metrics"
	"github.com/smilepoint-dental/contact-service/internal/ratelimit"
	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

var contactTracer = otel.Tracer("contact-pipeline")

// ThankYouMessage is the body returned on a successful submission.
const ThankYouMessage = "Thank you!"

// GenericFailureMessage is returned for every rejection. One message for all
// failure kinds so an observer cannot probe which rule fired; the specifics
// are logged server-side only.
const GenericFailureMessage = "Unable to send your message. Please try again later."

// CaptchaVerifier checks a client-supplied CAPTCHA token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) bool
}

// Dispatcher forwards a validated submission to the practice mailbox.
type Dispatcher interface {
	Dispatch(ctx context.Context, sub mailer.Submission) error
}

// Result is the transport-agnostic outcome of a submission, mapped to an HTTP
// response by each deployment adapter.
type Result struct {
	Status  int
	Message string
}

// Pipeline runs a submission through the anti-abuse checks in strict order:
// timing gate, validation, CAPTCHA (only when a token was supplied), rate
// limiting per IP and per email, then dispatch. It short-circuits on the
// first failure.
type Pipeline struct {
	verifier       CaptchaVerifier
	limiter        ratelimit.Store
	dispatcher     Dispatcher
	metrics        *metrics.ContactMetrics
	logger         *logging.Logger
	minFormSeconds float64
}

// NewPipeline assembles the contact pipeline. The rate-limit store is created
// once per process and injected; the pipeline holds no hidden shared state.
func NewPipeline(verifier CaptchaVerifier, limiter ratelimit.Store, dispatcher Dispatcher, m *metrics.ContactMetrics, logger *logging.Logger, minFormSeconds float64) *Pipeline {
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		verifier:       verifier,
		limiter:        limiter,
		dispatcher:     dispatcher,
		metrics:        m,
		logger:         logger,
		minFormSeconds: minFormSeconds,
	}
}

// Process runs one submission through the pipeline and maps the outcome to a
// status code. remoteIP is the adapter-derived client address; empty means
// unknown. Panics anywhere in the pipeline are caught here and mapped to the
// same generic 500.
func (p *Pipeline) Process(ctx context.Context, req Request, remoteIP string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic in contact pipeline", "panic", r)
			p.metrics.ObserveSubmission("panic")
			result = Result{Status: http.StatusInternalServerError, Message: GenericFailureMessage}
		}
	}()

	ctx, span := contactTracer.Start(ctx, "contact.process")
	defer span.End()

	if remoteIP == "" {
		remoteIP = "unknown"
	}

	err := p.run(ctx, req.trimmed(), remoteIP)
	switch {
	case err == nil:
		p.metrics.ObserveSubmission("accepted")
		return Result{Status: http.StatusOK, Message: ThankYouMessage}
	case errors.Is(err, ErrRateLimited):
		p.logger.Warn("submission rejected", "reason", err, "ip", remoteIP)
		p.metrics.ObserveSubmission("rate_limited")
		return Result{Status: http.StatusTooManyRequests, Message: GenericFailureMessage}
	case errors.Is(err, ErrInvalidSubmission):
		p.logger.Warn("submission rejected", "reason", err, "ip", remoteIP)
		p.metrics.ObserveSubmission("invalid")
		return Result{Status: http.StatusBadRequest, Message: GenericFailureMessage}
	case errors.Is(err, ErrCaptchaFailed):
		p.logger.Warn("submission rejected", "reason", err, "ip", remoteIP)
		p.metrics.ObserveSubmission("captcha")
		return Result{Status: http.StatusBadRequest, Message: GenericFailureMessage}
	default:
		p.logger.Error("submission dispatch failed", "error", err, "ip", remoteIP)
		p.metrics.ObserveSubmission("dispatch_error")
		return Result{Status: http.StatusInternalServerError, Message: GenericFailureMessage}
	}
}

func (p *Pipeline) run(ctx context.Context, req Request, remoteIP string) error {
	if req.TimeSpent < p.minFormSeconds {
		return fmt.Errorf("%w: submitted after %.1fs", ErrInvalidSubmission, req.TimeSpent)
	}

	if v := Validate(req.Name, req.Email, req.Message); !v.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(v.Errors, "; "))
	}

	// A submission without a token skips CAPTCHA entirely. Known gap: a
	// client can opt out by omitting the field; kept as-is pending a
	// product decision.
	if req.RecaptchaToken != "" && !p.verifyCaptcha(ctx, req.RecaptchaToken) {
		return ErrCaptchaFailed
	}

	ipKey := "ip:" + remoteIP
	emailKey := "email:" + strings.ToLower(req.Email)
	if !p.limiter.Allow(ctx, ipKey) || !p.limiter.Allow(ctx, emailKey) {
		return ErrRateLimited
	}

	if err := p.dispatch(ctx, req); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}

	p.logger.Info("contact submission accepted", "branch", req.Branch, "ip", remoteIP)
	return nil
}

func (p *Pipeline) verifyCaptcha(ctx context.Context, token string) bool {
	ctx, span := contactTracer.Start(ctx, "contact.verify_captcha")
	defer span.End()

	ok := p.verifier.Verify(ctx, token)
	span.SetAttributes(attribute.Bool("captcha.passed", ok))
	return ok
}

func (p *Pipeline) dispatch(ctx context.Context, req Request) error {
	ctx, span := contactTracer.Start(ctx, "contact.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("contact.branch", req.Branch))

	return p.dispatcher.Dispatch(ctx, mailer.Submission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		Branch:  req.Branch,
	})
}
