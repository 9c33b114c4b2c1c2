package sepay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/Windi-Fikriyansyah/admin_be_commerce/internal/services/sepay"
)

func newTestService(handler http.Handler) (*sepay.SepayService, *httptest.Server) {
	srv := httptest.NewServer(handler)
	svc := &sepay.SepayService{
		Client:     srv.Client(),
		BaseURL:    srv.URL,
		APIToken:   "tok-123",
		WebhookKey: "wh-secret",
	}
	return svc, srv
}

func TestListTransactions(t *testing.T) {
	c := qt.New(t)

	var gotAuth string
	var gotQuery map[string]string
	svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, qt.Equals, "/transactions/list")
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{
			"account_number":       r.URL.Query().Get("account_number"),
			"transaction_date_min": r.URL.Query().Get("transaction_date_min"),
			"limit":                r.URL.Query().Get("limit"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": 200,
			"error": null,
			"messages": {"success": true},
			"transactions": [
				{
					"id": "92704",
					"transaction_date": "2025-03-14 10:21:05",
					"account_number": "0123456789",
					"amount_in": "250000.00",
					"amount_out": "0.00",
					"accumulated": "1250000.00",
					"transaction_content": "INV-K9X2M4 thanh toan",
					"reference_number": "FT25073",
					"bank_brand_name": "VietinBank"
				}
			]
		}`))
	}))
	defer srv.Close()

	txs, err := svc.ListTransactions(context.Background(), sepay.ListOptions{
		AccountNumber: "0123456789",
		DateMin:       "2025-03-01",
		Limit:         50,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(gotAuth, qt.Equals, "Bearer tok-123")
	c.Assert(gotQuery["account_number"], qt.Equals, "0123456789")
	c.Assert(gotQuery["transaction_date_min"], qt.Equals, "2025-03-01")
	c.Assert(gotQuery["limit"], qt.Equals, "50")

	c.Assert(txs, qt.HasLen, 1)
	c.Assert(txs[0].ID, qt.Equals, "92704")
	c.Assert(txs[0].Content, qt.Equals, "INV-K9X2M4 thanh toan")
	c.Assert(sepay.ParseAmount(txs[0].AmountIn), qt.Equals, int64(250000))
}

func TestListTransactionsProviderError(t *testing.T) {
	c := qt.New(t)
	svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":401,"error":"Unauthorized","messages":{"success":false}}`))
	}))
	defer srv.Close()

	_, err := svc.ListTransactions(context.Background(), sepay.ListOptions{})
	c.Assert(err, qt.ErrorMatches, "sepay error: Unauthorized")
}

func TestCountTransactions(t *testing.T) {
	c := qt.New(t)
	svc, srv := newTestService(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Check(r.URL.Path, qt.Equals, "/transactions/count")
		w.Write([]byte(`{"status":200,"messages":{"success":true},"count_transactions":37}`))
	}))
	defer srv.Close()

	n, err := svc.CountTransactions(context.Background(), sepay.ListOptions{DateMin: "2025-03-01"})
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(37))
}

func TestValidateWebhookKey(t *testing.T) {
	c := qt.New(t)
	svc := &sepay.SepayService{WebhookKey: "wh-secret"}

	c.Assert(svc.ValidateWebhookKey("Apikey wh-secret"), qt.IsTrue)
	c.Assert(svc.ValidateWebhookKey("Apikey wh-secret "), qt.IsTrue) // trailing space ditoleransi
	c.Assert(svc.ValidateWebhookKey("Apikey salah"), qt.IsFalse)
	c.Assert(svc.ValidateWebhookKey("Bearer wh-secret"), qt.IsFalse)
	c.Assert(svc.ValidateWebhookKey(""), qt.IsFalse)

	// Key kosong di config = tolak semua, jangan jadi wildcard.
	empty := &sepay.SepayService{}
	c.Assert(empty.ValidateWebhookKey("Apikey "), qt.IsFalse)
}

func TestParseAmount(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		in   string
		want int64
	}{
		{"250000.00", 250000},
		{"0.00", 0},
		{" 1500000.50 ", 1500000},
		{"", 0},
		{"abc", 0},
	}
	for _, tt := range tests {
		c.Assert(sepay.ParseAmount(tt.in), qt.Equals, tt.want, qt.Commentf("input %q", tt.in))
	}
}

func TestParseDate(t *testing.T) {
	c := qt.New(t)

	got := sepay.ParseDate("2025-03-14 10:21:05")
	c.Assert(got, qt.Equals, time.Date(2025, 3, 14, 10, 21, 5, 0, time.UTC))

	c.Assert(sepay.ParseDate("14/03/2025").IsZero(), qt.IsTrue)
}
