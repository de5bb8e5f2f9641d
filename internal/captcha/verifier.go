package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

const defaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks reCAPTCHA v3 tokens against Google's verification endpoint.
// With no secret key configured, verification is skipped and every token
// passes - an explicit development bypass, decided at deployment time.
// Any network or parsing failure fails closed.
type Verifier struct {
	secretKey string
	minScore  float64
	endpoint  string
	client    *http.Client
	logger    *logging.Logger
}

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	ErrorCodes []string `json:"error-codes"`
}

// NewVerifier creates a reCAPTCHA verifier. Tokens scoring below minScore are
// treated as bots even when the provider reports success.
func NewVerifier(secretKey string, minScore float64, logger *logging.Logger) *Verifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Verifier{
		secretKey: secretKey,
		minScore:  minScore,
		endpoint:  defaultEndpoint,
		client:    &http.Client{Timeout: 5 * time.Second},
		logger:    logger,
	}
}

// Verify reports whether token belongs to a plausibly human submission.
func (v *Verifier) Verify(ctx context.Context, token string) bool {
	if v.secretKey == "" {
		v.logger.Debug("recaptcha secret not configured, skipping verification")
		return true
	}

	form := url.Values{
		"secret":   {v.secretKey},
		"response": {token},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		v.logger.Error("recaptcha request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Error("recaptcha verification failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Error("recaptcha endpoint returned error status", "status", resp.StatusCode)
		return false
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		v.logger.Error("recaptcha response parse failed", "error", err)
		return false
	}

	if !result.Success {
		v.logger.Warn("recaptcha verification rejected", "error_codes", result.ErrorCodes)
		return false
	}
	if result.Score < v.minScore {
		v.logger.Warn("recaptcha score below threshold", "score", result.Score, "min_score", v.minScore)
		return false
	}

	return true
}
