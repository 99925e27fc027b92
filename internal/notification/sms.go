// Package notification delivers one-time codes to phones.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/config"
	"github.com/spec-kit/crm-service/internal/domain"
)

// SMSSender sends a text message to a phone.
type SMSSender interface {
	Send(ctx context.Context, to domain.Phone, message string) error
}

// ErrGatewayRejected is returned when the gateway answers without a success status.
var ErrGatewayRejected = errors.New("sms gateway rejected message")

// GatewaySender posts messages to an HTTP SMS gateway as a form.
type GatewaySender struct {
	client *http.Client
	cfg    config.SMSConfig
}

// NewGatewaySender builds a sender bounded by cfg.RequestTimeout.
func NewGatewaySender(cfg config.SMSConfig) *GatewaySender {
	return &GatewaySender{client: &http.Client{Timeout: cfg.RequestTimeout}, cfg: cfg}
}

type gatewayResponse struct {
	Status string `json:"status"`
}

func (s *GatewaySender) Send(ctx context.Context, to domain.Phone, message string) error {
	form := url.Values{}
	form.Set("destination", to.String())
	form.Set("message", message)
	source := ""
	if to.CountryCode == s.cfg.SenderCountryCode {
		source = s.cfg.SenderID
	}
	form.Set("source", source)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Authorization", s.cfg.Authorization)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("read sms response: %w", err)
	}
	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}
	if parsed.Status != "success" {
		return fmt.Errorf("%w: %s", ErrGatewayRejected, parsed.Status)
	}
	return nil
}

// LogSender records deliveries in the log instead of sending them. Message bodies are not logged.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a development sender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to domain.Phone, _ string) error {
	s.logger.Info("sms delivery skipped; no gateway configured", zap.String("destination", to.String()))
	return nil
}

// NewSender picks the gateway when configured and the log sender otherwise.
func NewSender(cfg config.SMSConfig, logger *zap.Logger) SMSSender {
	if cfg.APIURL == "" {
		return NewLogSender(logger)
	}
	return NewGatewaySender(cfg)
}
