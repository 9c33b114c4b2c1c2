package sepay

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client untuk SePay user API (https://my.sepay.vn). Dipakai dashboard
// rekonsiliasi buat banding ledger lokal dengan data provider.

type SepayService struct {
	Client   *http.Client
	BaseURL  string
	APIToken string
	// WebhookKey memvalidasi header "Authorization: Apikey ..." di webhook.
	WebhookKey string
}

func NewSepayService() *SepayService {
	baseURL := os.Getenv("SEPAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://my.sepay.vn/userapi"
	}

	return &SepayService{
		Client:     &http.Client{Timeout: 15 * time.Second},
		BaseURL:    baseURL,
		APIToken:   os.Getenv("SEPAY_API_TOKEN"),
		WebhookKey: os.Getenv("SEPAY_WEBHOOK_KEY"),
	}
}

// Transaction is one row as reported by SePay. Nominal dikirim sebagai
// string desimal ("250000.00").
type Transaction struct {
	ID            string `json:"id"`
	Date          string `json:"transaction_date"` // "2006-01-02 15:04:05"
	AccountNumber string `json:"account_number"`
	AmountIn      string `json:"amount_in"`
	AmountOut     string `json:"amount_out"`
	Accumulated   string `json:"accumulated"`
	Content       string `json:"transaction_content"`
	ReferenceCode string `json:"reference_number"`
	Bank          string `json:"bank_brand_name"`
}

type listResponse struct {
	Status   int    `json:"status"`
	Error    string `json:"error"`
	Messages struct {
		Success bool `json:"success"`
	} `json:"messages"`
	Transactions []Transaction `json:"transactions"`
}

type countResponse struct {
	Status   int    `json:"status"`
	Error    string `json:"error"`
	Messages struct {
		Success bool `json:"success"`
	} `json:"messages"`
	Count int64 `json:"count_transactions"`
}

// ListOptions filters a transactions query by account and date range.
type ListOptions struct {
	AccountNumber string
	DateMin       string // "2006-01-02"
	DateMax       string
	Limit         int
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.AccountNumber != "" {
		q.Set("account_number", o.AccountNumber)
	}
	if o.DateMin != "" {
		q.Set("transaction_date_min", o.DateMin)
	}
	if o.DateMax != "" {
		q.Set("transaction_date_max", o.DateMax)
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	return q
}

func (s *SepayService) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	u := s.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.APIToken)

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("sepay: parse response (%d): %v", resp.StatusCode, err)
	}
	return nil
}

func (s *SepayService) ListTransactions(ctx context.Context, opts ListOptions) ([]Transaction, error) {
	var resp listResponse
	if err := s.get(ctx, "/transactions/list", opts.query(), &resp); err != nil {
		return nil, err
	}
	if !resp.Messages.Success {
		return nil, fmt.Errorf("sepay error: %s", resp.Error)
	}
	return resp.Transactions, nil
}

func (s *SepayService) CountTransactions(ctx context.Context, opts ListOptions) (int64, error) {
	var resp countResponse
	if err := s.get(ctx, "/transactions/count", opts.query(), &resp); err != nil {
		return 0, err
	}
	if !resp.Messages.Success {
		return 0, fmt.Errorf("sepay error: %s", resp.Error)
	}
	return resp.Count, nil
}

// ValidateWebhookKey checks the "Apikey <key>" Authorization header SePay
// sends on webhooks.
func (s *SepayService) ValidateWebhookKey(header string) bool {
	if s.WebhookKey == "" {
		return false
	}
	const prefix = "Apikey "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	got := strings.TrimSpace(header[len(prefix):])
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.WebhookKey)) == 1
}

// ParseAmount converts SePay's "250000.00" strings to VND int64.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// WebhookPayload is the body SePay posts on every bank transaction.
type WebhookPayload struct {
	ID            int64  `json:"id"`
	Gateway       string `json:"gateway"`
	Date          string `json:"transactionDate"` // "2006-01-02 15:04:05"
	AccountNumber string `json:"accountNumber"`
	Content       string `json:"content"`
	TransferType  string `json:"transferType"` // in / out
	Amount        int64  `json:"transferAmount"`
	Accumulated   int64  `json:"accumulated"`
	ReferenceCode string `json:"referenceCode"`
	Description   string `json:"description"`
}

// ParseDate parses SePay's timestamp format (waktu lokal provider).
func ParseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
