// Package simplefin fetches deposits from a SimpleFIN Bridge connection.
package simplefin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/billable/internal/common"
	"github.com/Veraticus/billable/internal/model"
)

// Client reads account activity through a claimed access URL.
type Client struct {
	httpClient *http.Client
	accessURL  string
	retry      common.RetryOptions
}

type accountSet struct {
	Errors   []string  `json:"errors"`
	Accounts []account `json:"accounts"`
}

type account struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Currency     string        `json:"currency"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
}

type transaction struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Payee       string `json:"payee"`
	Memo        string `json:"memo"`
	Posted      int64  `json:"posted"`
	Pending     bool   `json:"pending"`
}

// NewClient creates a client for accessURL. A nil httpClient gets a 30 second timeout.
func NewClient(accessURL string, httpClient *http.Client) (*Client, error) {
	if !isHTTPURL(accessURL) {
		return nil, fmt.Errorf("%w: SimpleFIN access URL must be http(s)", common.ErrInvalidConfig)
	}

	return &Client{
		accessURL:  strings.TrimSuffix(accessURL, "/"),
		httpClient: orDefault(httpClient),
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
		},
	}, nil
}

func orDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Deposits returns the posted credits between start and end, inclusive.
func (c *Client) Deposits(ctx context.Context, start, end time.Time) ([]model.Deposit, error) {
	u, err := url.Parse(c.accessURL + "/accounts")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	// end-date is exclusive.
	q := u.Query()
	q.Set("start-date", strconv.FormatInt(start.Unix(), 10))
	q.Set("end-date", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	u.RawQuery = q.Encode()

	slog.Debug("Requesting SimpleFIN transactions",
		"start_date", start.Format("2006-01-02"),
		"end_date", end.Format("2006-01-02"))

	var set accountSet
	err = common.WithRetry(ctx, func() error {
		return c.get(ctx, u.String(), &set)
	}, c.retry)
	if err != nil {
		return nil, err
	}

	for _, msg := range set.Errors {
		slog.Warn("SimpleFIN reported a problem", "message", msg)
	}

	var deposits []model.Deposit
	for _, acct := range set.Accounts {
		for _, tx := range acct.Transactions {
			if tx.Pending {
				continue
			}

			date := time.Unix(tx.Posted, 0)
			if date.Before(start) || date.After(end) {
				continue
			}

			amount, err := strconv.ParseFloat(strings.TrimSpace(tx.Amount), 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse amount %q: %w", tx.Amount, err)
			}
			if amount <= 0 {
				continue
			}

			payee := strings.TrimSpace(tx.Payee)
			if payee == "" {
				payee = strings.TrimSpace(tx.Description)
			}
			memo := strings.TrimSpace(tx.Memo)
			if memo == "" && payee != strings.TrimSpace(tx.Description) {
				memo = strings.TrimSpace(tx.Description)
			}

			deposits = append(deposits, model.Deposit{
				ID:        tx.ID,
				AccountID: acct.ID,
				Date:      date,
				Payee:     payee,
				Memo:      memo,
				Amount:    amount,
			})
		}
	}

	return deposits, nil
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: SimpleFIN returned 429", common.ErrRateLimit)
	case resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("SimpleFIN API error: %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &common.RetryableError{
			Err: fmt.Errorf("SimpleFIN API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &common.RetryableError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
