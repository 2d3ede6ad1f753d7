package notify

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"bloodlink/internal/domain"
)

// Notifier 紧急请求通知。失败只记日志，不影响请求创建。
type Notifier interface {
	CriticalRequest(ctx context.Context, req *domain.BloodRequest)
}

// WebhookNotifier 向配置的 webhook URL POST 新建的 Critical 请求
type WebhookNotifier struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

func NewWebhookNotifier(url string, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookNotifier{client: client, url: url, logger: logger}
}

func (n *WebhookNotifier) CriticalRequest(ctx context.Context, req *domain.BloodRequest) {
	if n.url == "" {
		return
	}
	payload := map[string]any{
		"event":         "critical_blood_request",
		"request_id":    req.RequestID,
		"blood_group":   string(req.BloodGroup),
		"units_needed":  req.UnitsNeeded,
		"hospital":      req.Hospital,
		"location":      req.Location,
		"required_date": req.RequiredDate.Format(domain.DateLayout),
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.url)
	if err != nil {
		n.logger.Warn("Critical request notification failed",
			zap.String("request_id", req.RequestID),
			zap.Error(err),
		)
		return
	}
	if resp.IsError() {
		n.logger.Warn("Critical request notification rejected",
			zap.String("request_id", req.RequestID),
			zap.Int("status", resp.StatusCode()),
		)
		return
	}
	n.logger.Info("Critical request notification sent",
		zap.String("request_id", req.RequestID),
		zap.String("blood_group", string(req.BloodGroup)),
	)
}

// NopNotifier 未配置 webhook 时使用
type NopNotifier struct{}

func (NopNotifier) CriticalRequest(context.Context, *domain.BloodRequest) {}
