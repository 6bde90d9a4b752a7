package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrRejected возвращается когда провайдер отклонил платёж.
// Это деловой отказ, а не ошибка транспорта: ретраи его не лечат
// мгновенно, но попытка считается выполненной.
type ErrRejected struct {
	StatusCode    int
	FailureReason string
}

func (e *ErrRejected) Error() string {
	return fmt.Sprintf("payment provider rejected: %s (status %d)", e.FailureReason, e.StatusCode)
}

// Client - HTTP клиент внешнего платёжного провайдера
type Client struct {
	logger     *zap.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент провайдера.
// timeout ограничивает каждую попытку целиком, включая чтение ответа.
func NewClient(logger *zap.Logger, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type processRequest struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	CardDetails string `json:"card_details"`
}

type processResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	FailureReason string `json:"failureReason"`
}

// Process выполняет один вызов провайдера и возвращает ID транзакции.
// 200 трактуется как успех, любой другой статус как отказ с причиной
// из тела ответа. Ошибки транспорта возвращаются как есть.
func (c *Client) Process(ctx context.Context, orderID string, amount int64) (string, error) {
	body, err := json.Marshal(processRequest{
		OrderID:     orderID,
		Amount:      amount,
		CardDetails: "...sensitive data...",
	})
	if err != nil {
		return "", fmt.Errorf("marshal provider request: %w", err)
	}

	url := c.baseURL + "/api/v1/payments/process"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call payment provider: %w", err)
	}
	defer resp.Body.Close()

	var parsed processResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode == http.StatusOK {
		return "", fmt.Errorf("decode provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		reason := parsed.FailureReason
		if reason == "" {
			reason = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		c.logger.Warn("payment provider returned error",
			zap.String("order_id", orderID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("failure_reason", reason),
		)
		return "", &ErrRejected{StatusCode: resp.StatusCode, FailureReason: reason}
	}

	return parsed.TransactionID, nil
}
