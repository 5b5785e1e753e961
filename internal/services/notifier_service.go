package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studiokit/internal/common"
	"studiokit/internal/config"

	"go.uber.org/zap"
)

// NotifierService sends outbound email and SMS. Per-tenant credentials
// come from the request's decrypted vault blobs; when a tenant has none
// (or decryption failed) the platform-default channel is used instead.
type NotifierService interface {
	SendEmail(ctx context.Context, creds *common.EmailCredentials, recipient, subject, body string) error
	SendSMS(ctx context.Context, creds *common.SMSCredentials, recipient, message string) error
}

type notifierService struct {
	cfg        *config.Config
	httpClient *http.Client
	logger     *zap.Logger
}

func NewNotifierService(cfg *config.Config, logger *zap.Logger) NotifierService {
	return &notifierService{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (s *notifierService) SendEmail(ctx context.Context, creds *common.EmailCredentials, recipient, subject, body string) error {
	apiKey := s.cfg.PlatformEmailAPIKey
	from := s.cfg.PlatformEmailFrom
	if creds != nil {
		apiKey = creds.APIKey
		from = creds.From
	}
	if apiKey == "" {
		s.logger.Info("email channel unconfigured, dropping message",
			zap.String("recipient", recipient), zap.String("subject", subject))
		return nil
	}

	payload, err := json.Marshal(map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": recipient}}},
		},
		"from":    map[string]string{"email": from},
		"subject": subject,
		"content": []map[string]string{{"type": "text/plain", "value": body}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.sendgrid.com/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *notifierService) SendSMS(ctx context.Context, creds *common.SMSCredentials, recipient, message string) error {
	sid := s.cfg.PlatformSMSSID
	token := s.cfg.PlatformSMSToken
	from := s.cfg.PlatformSMSFrom
	if creds != nil {
		sid = creds.AccountSID
		token = creds.AuthToken
		from = creds.From
	}
	if sid == "" || token == "" {
		s.logger.Info("sms channel unconfigured, dropping message",
			zap.String("recipient", recipient))
		return nil
	}

	form := url.Values{}
	form.Set("To", recipient)
	form.Set("From", from)
	form.Set("Body", message)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(sid, token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned status %d", resp.StatusCode)
	}
	return nil
}
