package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"testing"

	tu "github.com/desertthunder/tdx/internal/testing"
)

func TestRequestErrors(t *testing.T) {
	ctx := context.Background()

	tt := []struct {
		name   string
		status int
		body   string
		want   *TidalError
	}{
		{
			name:   "string substatus",
			status: http.StatusNotFound,
			body:   `{"status":404,"subStatus":"1002","userMessage":"Not found"}`,
			want:   NewRequestError("Not found", 404, "1002"),
		},
		{
			name:   "numeric substatus",
			status: http.StatusUnauthorized,
			body:   `{"status":401,"subStatus":11003,"userMessage":"Token expired"}`,
			want:   NewRequestError("Token expired", 401, "11003"),
		},
		{
			name:   "oauth error body",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid_grant","error_description":"Token is invalid"}`,
			want:   NewRequestError("Token is invalid", 400, ""),
		},
		{
			name:   "oauth error only",
			status: http.StatusBadRequest,
			body:   `{"error":"invalid_client"}`,
			want:   NewRequestError("invalid_client", 400, ""),
		},
		{
			name:   "non json body",
			status: http.StatusBadGateway,
			body:   `<html>bad gateway</html>`,
			want:   NewRequestError("Bad Gateway", 502, ""),
		},
		{
			name:   "empty body",
			status: http.StatusInternalServerError,
			body:   ``,
			want:   NewRequestError("Internal Server Error", 500, ""),
		},
	}

	verbs := []struct {
		method string
		call   func(*TidalService) (Response, error)
	}{
		{http.MethodGet, func(s *TidalService) (Response, error) { return s.GetTrackInfo(ctx, "1") }},
		{http.MethodPut, func(s *TidalService) (Response, error) { return s.CreatePlaylist(ctx, Params{"name": "Mix"}) }},
		{http.MethodPost, func(s *TidalService) (Response, error) {
			return s.AddTracksToPlaylist(ctx, "pl-1", []string{"1", "2"}, nil)
		}},
	}

	for _, tc := range tt {
		for _, v := range verbs {
			t.Run(v.method+" "+tc.name, func(t *testing.T) {
				api := newFakeAPI(t, tc.status, tc.body)
				srv := newServiceFor(t, api)

				res, err := v.call(srv)
				if res != nil {
					t.Errorf("expected no response, got %s", res)
				}
				if got := api.last(t).Method; got != v.method {
					t.Errorf("expected %s request, got %s", v.method, got)
				}

				var te *TidalError
				if !errors.As(err, &te) {
					t.Fatalf("expected TidalError, got %T: %v", err, err)
				}
				if !te.Equal(tc.want) {
					t.Errorf("expected %v, got %v", tc.want, te)
				}
				if !errors.Is(err, ErrTidalRequest) {
					t.Error("expected error to match ErrTidalRequest")
				}
			})
		}
	}
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("Network Error", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		rt := tu.NewMockRoundTripper(nil, cause)
		srv, _ := NewTidalService(TidalConfig{AccessToken: "a", UserID: "1"}, WithHTTPClient(tu.NewMockClient(rt)))

		_, err := srv.GetUserData(ctx)

		var te *TidalError
		if !errors.As(err, &te) {
			t.Fatalf("expected TidalError, got %v", err)
		}
		if te.Kind != KindRequest || te.Status != 0 {
			t.Errorf("unexpected error fields: %+v", te)
		}
		if !errors.Is(err, cause) {
			t.Error("expected network cause to be wrapped")
		}
		if rt.Calls() != 1 {
			t.Errorf("expected exactly one attempt, got %d", rt.Calls())
		}
	})

	t.Run("Read Failure", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &tu.FCloser{},
			Header:     http.Header{},
		}, nil)
		srv, _ := NewTidalService(TidalConfig{AccessToken: "a", UserID: "1"}, WithHTTPClient(tu.NewMockClient(rt)))

		_, err := srv.GetUserData(ctx)
		if !errors.Is(err, ErrTidalRequest) {
			t.Errorf("expected TidalRequestError, got %v", err)
		}
	})

	t.Run("Empty Success Body", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusNoContent, "")
		srv := newServiceFor(t, api)

		res, err := srv.GetUserData(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if res != nil {
			t.Errorf("expected nil response, got %v", res)
		}
	})

	t.Run("Non Object Success Body", func(t *testing.T) {
		tt := []struct {
			body string
			want any
		}{
			{`[{"id":1},{"id":2}]`, []any{map[string]any{"id": 1.0}, map[string]any{"id": 2.0}}},
			{`"ok"`, "ok"},
			{`42`, 42.0},
			{`null`, nil},
		}

		for _, tc := range tt {
			api := newFakeAPI(t, http.StatusOK, tc.body)
			srv := newServiceFor(t, api)

			res, err := srv.GetUserFollowers(ctx)
			if err != nil {
				t.Fatalf("%s: expected no error, got %v", tc.body, err)
			}
			if string(res) != tc.body {
				t.Errorf("expected body %s unchanged, got %s", tc.body, res)
			}

			got, err := res.Value()
			if err != nil {
				t.Fatalf("%s: Value failed: %v", tc.body, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("%s: expected %#v, got %#v", tc.body, tc.want, got)
			}
			if _, ok := res.Object(); ok {
				t.Errorf("%s: expected Object to report a non-object body", tc.body)
			}
		}
	})

	t.Run("Malformed Success Body", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, "{not json")
		srv := newServiceFor(t, api)

		_, err := srv.GetUserData(ctx)

		var te *TidalError
		if !errors.As(err, &te) || te.Kind != KindRequest {
			t.Fatalf("expected TidalRequestError, got %v", err)
		}
		if te.Status != http.StatusOK {
			t.Errorf("expected status 200, got %d", te.Status)
		}
	})

	t.Run("Sends Session Headers", func(t *testing.T) {
		rt := tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"id":1}`)),
			Header:     http.Header{},
		}, nil)
		srv, _ := NewTidalService(TidalConfig{AccessToken: "tok", UserID: "1"}, WithHTTPClient(tu.NewMockClient(rt)))

		if _, err := srv.GetUserData(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		req := rt.Requests()[0]
		if req.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected Authorization header %q", req.Header.Get("Authorization"))
		}
		if req.URL.Host != "api.tidal.com" {
			t.Errorf("expected production host, got %s", req.URL.Host)
		}
	})

	t.Run("Context Canceled", func(t *testing.T) {
		api := newFakeAPI(t, http.StatusOK, `{}`)
		srv := newServiceFor(t, api)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := srv.GetUserData(cctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled to be wrapped, got %v", err)
		}
		if !errors.Is(err, ErrTidalRequest) {
			t.Errorf("expected TidalRequestError, got %v", err)
		}
	})
}

func TestSubStatusString(t *testing.T) {
	tt := []struct {
		raw  string
		want string
	}{
		{``, ""},
		{`null`, ""},
		{`"1002"`, "1002"},
		{`11003`, "11003"},
		{`{"x":1}`, `{"x":1}`},
	}

	for _, tc := range tt {
		if got := subStatusString([]byte(tc.raw)); got != tc.want {
			t.Errorf("subStatusString(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
