package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	maxResponseBytes = 1 << 20
	requestIDHeader  = "X-Request-ID"
)

// Client talks to the ledger service over HTTP/JSON.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Clock          ports.Clock
}

var (
	_ ports.LedgerReader = Client{}
	_ ports.LedgerWriter = Client{}
)

func (c Client) Balance(ctx context.Context, id domain.UserID) (domain.Balance, error) {
	var payload balancePayload
	if err := c.do(ctx, http.MethodGet, "balance/"+strconv.FormatInt(int64(id), 10), nil, nil, &payload); err != nil {
		return domain.Balance{}, err
	}
	return payload.toDomain(), nil
}

func (c Client) Transactions(ctx context.Context, id domain.UserID) ([]domain.Transaction, error) {
	var payload transactionsPayload
	if err := c.do(ctx, http.MethodGet, "transactions/"+strconv.FormatInt(int64(id), 10), nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

func (c Client) SystemSummary(ctx context.Context) (domain.SystemSummary, error) {
	var payload summaryPayload
	if err := c.do(ctx, http.MethodGet, "admin/summary", nil, nil, &payload); err != nil {
		return domain.SystemSummary{}, err
	}
	return payload.toDomain(), nil
}

func (c Client) RecentActivity(ctx context.Context, limit int) ([]domain.Transaction, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var payload transactionsPayload
	if err := c.do(ctx, http.MethodGet, "admin/activity", query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.toDomain()
}

func (c Client) CreateAccount(ctx context.Context, params domain.CreateUser) (domain.User, error) {
	body := createUserBody{Name: params.Name}
	if params.Email != "" {
		body.Email = &params.Email
	}

	var payload userPayload
	if err := c.do(ctx, http.MethodPost, "users", nil, body, &payload); err != nil {
		return domain.User{}, err
	}
	user, err := payload.toDomain()
	if err != nil {
		return domain.User{}, err
	}
	if user.ID <= 0 {
		return domain.User{}, &domain.UnavailableError{Message: "create user response missing id"}
	}
	return user, nil
}

func (c Client) Deposit(ctx context.Context, params domain.Deposit) (domain.Transaction, error) {
	body := movementBody{
		UserID:      int64(params.UserID),
		Amount:      json.Number(params.Amount.String()),
		Description: params.Description,
	}

	var payload mutationPayload
	if err := c.do(ctx, http.MethodPost, "deposit", nil, body, &payload); err != nil {
		return domain.Transaction{}, err
	}
	to := params.UserID
	return c.committed(payload, domain.TransactionDeposit, params.Amount, nil, &to, params.Description)
}

func (c Client) Transfer(ctx context.Context, params domain.Transfer) (domain.Transaction, error) {
	body := transferBody{
		FromUserID:  int64(params.From),
		ToUserID:    int64(params.To),
		Amount:      json.Number(params.Amount.String()),
		Description: params.Description,
	}

	var payload mutationPayload
	if err := c.do(ctx, http.MethodPost, "transfer", nil, body, &payload); err != nil {
		return domain.Transaction{}, err
	}
	from, to := params.From, params.To
	return c.committed(payload, domain.TransactionTransfer, params.Amount, &from, &to, params.Description)
}

func (c Client) Withdraw(ctx context.Context, params domain.Withdraw) (domain.Transaction, error) {
	body := movementBody{
		UserID:      int64(params.UserID),
		Amount:      json.Number(params.Amount.String()),
		Description: params.Description,
	}

	var payload mutationPayload
	if err := c.do(ctx, http.MethodPost, "withdraw", nil, body, &payload); err != nil {
		return domain.Transaction{}, err
	}
	from := params.UserID
	return c.committed(payload, domain.TransactionWithdraw, params.Amount, &from, nil, params.Description)
}

func (c Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint, err := buildAPIURL(c.baseURL(), path, query)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID := ports.RequestIDFrom(ctx); requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return &domain.UnavailableError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decodeFailure(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return &domain.UnavailableError{Status: resp.StatusCode, Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

func (c Client) committed(payload mutationPayload, kind domain.TransactionType, amount decimal.Decimal, from, to *domain.UserID, description string) (domain.Transaction, error) {
	if payload.TransactionID <= 0 {
		return domain.Transaction{}, &domain.UnavailableError{Message: fmt.Sprintf("%s response missing transaction id", strings.ToLower(string(kind)))}
	}

	status := domain.StatusCompleted
	if parsed, ok := domain.ParseTransactionStatus(payload.Status); ok {
		status = parsed
	}

	return domain.Transaction{
		ID:          domain.TransactionID(payload.TransactionID),
		Type:        kind,
		Status:      status,
		Amount:      amount,
		From:        from,
		To:          to,
		Description: description,
		CreatedAt:   c.clock().Now(),
	}, nil
}

func (c Client) baseURL() string {
	if strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) clock() ports.Clock {
	if c.Clock != nil {
		return c.Clock
	}
	return ports.SystemClock{}
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

// decodeFailure turns a non-2xx response into a RejectedError when the
// service explained itself with a client error, otherwise an UnavailableError.
func decodeFailure(resp *http.Response) error {
	var payload errorPayload
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload)
	message := payload.message()

	switch {
	case message == "":
		return &domain.UnavailableError{Status: resp.StatusCode}
	case resp.StatusCode >= http.StatusInternalServerError:
		return &domain.UnavailableError{Status: resp.StatusCode, Message: message}
	default:
		return &domain.RejectedError{
			Reason:  domain.ClassifyRejection(resp.StatusCode, message),
			Message: message,
			Status:  resp.StatusCode,
		}
	}
}

func buildAPIURL(baseURL string, path string, query url.Values) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint := parsed.JoinPath(path)
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}
