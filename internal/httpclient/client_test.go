package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestClient_GetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/public/orderbook/ETH_USDT" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("limit"); got != "40" {
			t.Errorf("limit = %s", got)
		}
		if got := r.Header.Get("X-Test"); got != "yes" {
			t.Errorf("header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"asks":[["2000.1","1.5"]]}`))
	}))
	defer server.Close()

	client, err := New(
		WithVenue("whitebit"),
		WithBaseURL(server.URL+"/"),
		WithHeaders(map[string]string{"X-Test": "yes"}),
		WithRequestTimeout(time.Second),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var out struct {
		Asks [][]string `json:"asks"`
	}
	query := url.Values{"limit": {"40"}}
	if err := client.GetJSON(context.Background(), "/api/v4/public/orderbook/ETH_USDT", query, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
	if len(out.Asks) != 1 || out.Asks[0][0] != "2000.1" {
		t.Errorf("asks = %v", out.Asks)
	}
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		rateLimited bool
	}{
		{name: "ok", status: http.StatusOK, body: `{}`},
		{name: "bad_request", status: http.StatusBadRequest, body: `{"msg":"bad symbol"}`, wantErr: true},
		{name: "too_many_requests", status: http.StatusTooManyRequests, body: `slow down`, wantErr: true, rateLimited: true},
		{name: "server_error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := New(WithBaseURL(server.URL))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			resp, err := client.Get(context.Background(), "/x", nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Fatalf("resp = %+v", resp)
			}
			if !tt.wantErr {
				return
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("err %T is not *StatusError", err)
			}
			if se.RateLimited() != tt.rateLimited {
				t.Errorf("RateLimited = %v", se.RateLimited())
			}
		})
	}
}

func TestClient_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client, _ := New(WithVenue("okx"), WithBaseURL(server.URL))

	var out map[string]any
	err := client.GetJSON(context.Background(), "/", nil, &out)

	var de *DecodeError
	if !errors.As(err, &de) || de.Venue != "okx" {
		t.Errorf("err = %v", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, _ := New(WithBaseURL(server.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Get(ctx, "/", nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want deadline exceeded", err)
	}
}

func TestClient_Resolve(t *testing.T) {
	client, _ := New(WithBaseURL("https://www.okx.com/"))

	tests := []struct {
		path  string
		query url.Values
		want  string
	}{
		{"/api/v5/market/books", nil, "https://www.okx.com/api/v5/market/books"},
		{"api/v5/market/books", url.Values{"instId": {"ETH-USDT"}}, "https://www.okx.com/api/v5/market/books?instId=ETH-USDT"},
		{"/a?x=1", url.Values{"y": {"2"}}, "https://www.okx.com/a?x=1&y=2"},
		{"https://other.example/z", nil, "https://other.example/z"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := client.resolve(tt.path, tt.query); got != tt.want {
				t.Errorf("resolve = %q, want %q", got, tt.want)
			}
		})
	}
}
