package services

import (
	"context"
	"fmt"

	recaptcha "cloud.google.com/go/recaptchaenterprise/v2/apiv1"
	"cloud.google.com/go/recaptchaenterprise/v2/apiv1/recaptchaenterprisepb"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// CaptchaCheck is one token presented by a browser for a protected action.
type CaptchaCheck struct {
	Token     string
	Action    string
	RemoteIP  string
	UserAgent string
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, check CaptchaCheck) error
}

// NoopCaptcha accepts everything. Used when reCAPTCHA is not configured.
type NoopCaptcha struct{}

func (NoopCaptcha) Verify(context.Context, CaptchaCheck) error { return nil }

type RecaptchaVerifier struct {
	client   *recaptcha.Client
	parent   string
	siteKey  string
	minScore float32
	log      *zap.Logger
}

func NewRecaptchaVerifier(ctx context.Context, projectID, siteKey string, minScore float32, log *zap.Logger, opts ...option.ClientOption) (*RecaptchaVerifier, error) {
	client, err := recaptcha.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create recaptcha client: %w", err)
	}
	return &RecaptchaVerifier{
		client:   client,
		parent:   fmt.Sprintf("projects/%s", projectID),
		siteKey:  siteKey,
		minScore: minScore,
		log:      log,
	}, nil
}

func (r *RecaptchaVerifier) Close() error {
	return r.client.Close()
}

// Verify creates an assessment and rejects invalid tokens, action mismatches and
// scores below the configured minimum.
func (r *RecaptchaVerifier) Verify(ctx context.Context, check CaptchaCheck) error {
	if check.Token == "" {
		return ErrCaptchaFailed
	}
	req := &recaptchaenterprisepb.CreateAssessmentRequest{
		Parent: r.parent,
		Assessment: &recaptchaenterprisepb.Assessment{
			Event: &recaptchaenterprisepb.Event{
				Token:         check.Token,
				SiteKey:       r.siteKey,
				UserIpAddress: check.RemoteIP,
				UserAgent:     check.UserAgent,
			},
		},
	}
	resp, err := r.client.CreateAssessment(ctx, req)
	if err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}

	props := resp.GetTokenProperties()
	if props == nil || !props.GetValid() {
		r.log.Info("captcha token invalid", zap.String("reason", props.GetInvalidReason().String()))
		return ErrCaptchaFailed
	}
	if check.Action != "" && props.GetAction() != check.Action {
		r.log.Info("captcha action mismatch", zap.String("expected", check.Action), zap.String("got", props.GetAction()))
		return ErrCaptchaFailed
	}
	if score := resp.GetRiskAnalysis().GetScore(); score < r.minScore {
		r.log.Info("captcha score too low", zap.Float32("score", score))
		return ErrCaptchaFailed
	}
	return nil
}
