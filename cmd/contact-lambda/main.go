package main

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/redis/go-redis/v9"

	"github.com/smilepoint-dental/contact-service/internal/captcha"
	appconfig "github.com/smilepoint-dental/contact-service/internal/config"
	"github.com/smilepoint-dental/contact-service/internal/contact"
	httpmiddleware "github.com/smilepoint-dental/contact-service/internal/http/middleware"
	"github.com/smilepoint-dental/contact-service/internal/mailer"
	"github.com/smilepoint-dental/contact-service/internal/ratelimit"
	"github.com/smilepoint-dental/contact-service/pkg/logging"
)

// handler holds the pipeline assembled once per cold start. Rate-limit state
// in the in-memory store is per-instance; configure REDIS_ADDR to share
// quotas across concurrent executions.
type handler struct {
	pipeline *contact.Pipeline
	origins  []string
	logger   *logging.Logger
}

func main() {
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	var limiter ratelimit.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		limiter = ratelimit.NewRedisStore(redis.NewClient(opts), cfg.RateLimitMax, cfg.RateLimitWindow, logger)
	} else {
		limiter = ratelimit.NewMemoryStore(cfg.RateLimitMax, cfg.RateLimitWindow)
	}

	sender, err := mailer.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to configure email sender", "error", err)
		os.Exit(1)
	}
	dispatcher := mailer.NewDispatcher(sender, mailer.Routes{
		Default:     cfg.ContactEmail,
		Ruimsig:     cfg.ContactEmailRuimsig,
		Weltevreden: cfg.ContactEmailWeltevreden,
	}, logger)

	verifier := captcha.NewVerifier(cfg.RecaptchaSecretKey, cfg.RecaptchaMinScore, logger)
	pipeline := contact.NewPipeline(verifier, limiter, dispatcher, nil, logger, cfg.MinFormSeconds)

	h := &handler{
		pipeline: pipeline,
		origins:  cfg.AllowedOrigins,
		logger:   logger,
	}
	lambda.Start(h.handle)
}

func (h *handler) handle(ctx context.Context, evt events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	method := strings.ToUpper(strings.TrimSpace(evt.RequestContext.HTTP.Method))
	headers := h.responseHeaders(headerValue(evt.Headers, "origin"))

	switch method {
	case http.MethodOptions:
		return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusOK, Headers: headers}, nil
	case http.MethodPost:
	default:
		return respond(http.StatusMethodNotAllowed, "Method not allowed", headers), nil
	}

	body := evt.Body
	if evt.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(evt.Body)
		if err != nil {
			h.logger.Warn("failed to decode request body", "error", err)
			return respond(http.StatusBadRequest, contact.GenericFailureMessage, headers), nil
		}
		body = string(decoded)
	}

	var req contact.Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		h.logger.Warn("failed to decode contact request", "error", err)
		return respond(http.StatusBadRequest, contact.GenericFailureMessage, headers), nil
	}

	result := h.pipeline.Process(ctx, req, clientIP(evt))
	return respond(result.Status, result.Message, headers), nil
}

func (h *handler) responseHeaders(origin string) map[string]string {
	headers := httpmiddleware.SecurityHeaderValues()
	headers["Content-Type"] = "application/json"

	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin {
			if allowed == "*" && origin == "" {
				origin = "*"
			}
			headers["Access-Control-Allow-Origin"] = origin
			headers["Access-Control-Allow-Headers"] = "Content-Type"
			headers["Access-Control-Allow-Methods"] = "POST, OPTIONS"
			headers["Vary"] = "Origin"
			break
		}
	}
	return headers
}

func respond(status int, message string, headers map[string]string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(contact.Response{Message: message})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

// clientIP derives the client address: first hop of X-Forwarded-For, then
// X-Real-IP, then the source IP the platform recorded, else "unknown".
func clientIP(evt events.APIGatewayV2HTTPRequest) string {
	if xff := headerValue(evt.Headers, "x-forwarded-for"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := headerValue(evt.Headers, "x-real-ip"); xri != "" {
		return xri
	}
	if ip := strings.TrimSpace(evt.RequestContext.HTTP.SourceIP); ip != "" {
		return ip
	}
	return "unknown"
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
