package salesapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

type fakeAPI struct {
	authCalls  atomic.Int32
	salesCalls atomic.Int32
	authStatus int
	expire     int64
	lastQuery  atomic.Value
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/getAuthorize", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("auth method = %s, want POST", r.Method)
		}
		var req authRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode auth request: %v", err)
		}
		if req.TokenType != DefaultTokenType {
			t.Errorf("tokenType = %q, want %q", req.TokenType, DefaultTokenType)
		}
		if f.authStatus != 0 {
			w.WriteHeader(f.authStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(authResponse{Token: "secret", Expire: f.expire})
	})
	mux.HandleFunc("/sales", func(w http.ResponseWriter, r *http.Request) {
		f.salesCalls.Add(1)
		if got := r.Header.Get(TokenHeader); got != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.lastQuery.Store(r.URL.Query())

		resp := model.SalesResponse{
			Results: model.SalesResults{
				Sales:      []model.Sale{{ID: "abc", Date: "2026-10-01T10:00:00Z", Price: 120}},
				TotalSales: []model.TotalSale{{Day: "2026-10-01", TotalSale: 120}},
			},
			Pagination: model.Cursors{After: "next-token"},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func TestFetchSales_OK(t *testing.T) {
	api := &fakeAPI{expire: 3600}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.FetchSales(ctx, model.Filters{
		StartDate: "2026-09-18",
		EndDate:   "2026-10-18",
		SortBy:    model.SortByDate,
		SortOrder: model.SortDesc,
	})
	if err != nil {
		t.Fatalf("FetchSales error: %v", err)
	}
	if len(res.Results.Sales) != 1 || res.Results.Sales[0].ID != "abc" {
		t.Fatalf("unexpected sales: %+v", res.Results.Sales)
	}
	if res.Pagination.After != "next-token" || res.Pagination.Before != "" {
		t.Fatalf("unexpected pagination: %+v", res.Pagination)
	}

	q := api.lastQuery.Load().(url.Values)
	if q["startDate"][0] != "2026-09-18" || q["sortBy"][0] != "date" || q["sortOrder"][0] != "desc" {
		t.Fatalf("unexpected query: %v", q)
	}
	if _, ok := q["after"]; ok {
		t.Fatalf("after must be omitted, got %v", q["after"])
	}
	if _, ok := q["before"]; ok {
		t.Fatalf("before must be omitted, got %v", q["before"])
	}
}

func TestFetchSales_ReusesToken(t *testing.T) {
	api := &fakeAPI{expire: 3600}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		if _, err := client.FetchSales(context.Background(), model.Filters{}); err != nil {
			t.Fatalf("FetchSales error: %v", err)
		}
	}

	if got := api.authCalls.Load(); got != 1 {
		t.Fatalf("auth calls = %d, want 1", got)
	}
	if got := api.salesCalls.Load(); got != 3 {
		t.Fatalf("sales calls = %d, want 3", got)
	}
}

func TestFetchSales_AuthFailure(t *testing.T) {
	api := &fakeAPI{authStatus: http.StatusForbidden}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zaptest.NewLogger(t))

	_, err := client.FetchSales(context.Background(), model.Filters{})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	if !errors.Is(err, ErrAuth) {
		t.Fatalf("expected ErrAuth, got %v", err)
	}
	if got := api.salesCalls.Load(); got != 0 {
		t.Fatalf("sales calls = %d, want 0", got)
	}
}

func TestFetchSales_QueryFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/getAuthorize" {
			_ = json.NewEncoder(w).Encode(authResponse{Token: "secret", Expire: 3600})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zaptest.NewLogger(t))

	_, err := client.FetchSales(context.Background(), model.Filters{})
	if !errors.Is(err, ErrFetchFailed) || !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrFetchFailed and ErrQuery, got %v", err)
	}
}

func TestFetchSales_MalformedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/getAuthorize" {
			_ = json.NewEncoder(w).Encode(authResponse{Token: "secret", Expire: 3600})
			return
		}
		_, _ = w.Write([]byte("{not json"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "", time.Second, zaptest.NewLogger(t))

	_, err := client.FetchSales(context.Background(), model.Filters{})
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("expected ErrQuery, got %v", err)
	}
}

func TestFetchSales_NotConfigured(t *testing.T) {
	var client *Client

	_, err := client.FetchSales(context.Background(), model.Filters{})
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name       string
		filters    model.Filters
		wantAfter  string
		wantBefore string
	}{
		{name: "no cursors", filters: model.Filters{}},
		{name: "after", filters: model.Filters{After: "a1"}, wantAfter: "a1"},
		{name: "before", filters: model.Filters{Before: "b1"}, wantBefore: "b1"},
		{name: "both set keeps after only", filters: model.Filters{After: "a1", Before: "b1"}, wantAfter: "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := EncodeQuery(tt.filters)

			if params.Has("after") != (tt.wantAfter != "") || params.Get("after") != tt.wantAfter {
				t.Fatalf("after = %q (present %v), want %q", params.Get("after"), params.Has("after"), tt.wantAfter)
			}
			if params.Has("before") != (tt.wantBefore != "") || params.Get("before") != tt.wantBefore {
				t.Fatalf("before = %q (present %v), want %q", params.Get("before"), params.Has("before"), tt.wantBefore)
			}
			for _, key := range []string{"startDate", "endDate", "priceMin", "email", "phone", "sortBy", "sortOrder"} {
				if !params.Has(key) {
					t.Fatalf("param %q missing", key)
				}
			}
		})
	}
}
