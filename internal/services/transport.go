// HTTP transport for the TIDAL API: one request per call, uniform error translation.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiErrorBody is the error payload returned by api.tidal.com and auth.tidal.com.
type apiErrorBody struct {
	Status           int             `json:"status"`
	SubStatus        json.RawMessage `json:"subStatus"`
	UserMessage      string          `json:"userMessage"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

// get performs a GET request with params encoded in the query string.
func (s *TidalService) get(ctx context.Context, rawURL string, params Params) (Response, error) {
	return s.do(ctx, http.MethodGet, encodeQuery(rawURL, params), nil, nil)
}

// put performs a PUT request with params as the body.
func (s *TidalService) put(ctx context.Context, rawURL string, params Params, header http.Header) (Response, error) {
	body, err := encodeBody(params, s.cfg.bodyEncoding)
	if err != nil {
		return nil, err
	}
	return s.do(ctx, http.MethodPut, rawURL, body, header)
}

// post performs a POST request with params as the body.
func (s *TidalService) post(ctx context.Context, rawURL string, params Params, header http.Header) (Response, error) {
	body, err := encodeBody(params, s.cfg.bodyEncoding)
	if err != nil {
		return nil, err
	}
	return s.do(ctx, http.MethodPost, rawURL, body, header)
}

// do dispatches a single request using a snapshot of the session headers with the per-call
// overrides layered on top. The session headers themselves are never modified here.
func (s *TidalService) do(ctx context.Context, method, rawURL string, body io.Reader, override http.Header) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, &TidalError{Kind: KindRequest, Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}

	req.Header = s.headers()
	for k, vals := range override {
		req.Header[k] = append([]string(nil), vals...)
	}

	return s.send(req)
}

// send executes req and decodes the response body, mapping failures to a TidalRequestError.
func (s *TidalService) send(req *http.Request) (Response, error) {
	start := time.Now()

	resp, err := s.cfg.httpClient.Do(req)
	if err != nil {
		s.cfg.logger.Debug("request failed", "method", req.Method, "url", req.URL.Redacted(), "error", err)
		return nil, &TidalError{Kind: KindRequest, Message: fmt.Sprintf("request failed: %v", err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TidalError{
			Kind:    KindRequest,
			Message: fmt.Sprintf("failed to read response: %v", err),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	s.cfg.logger.Debug("request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, requestErrorFrom(resp.StatusCode, data)
	}

	if len(data) == 0 {
		return nil, nil
	}

	if !json.Valid(data) {
		err := fmt.Errorf("invalid JSON in %d byte body", len(data))
		return nil, &TidalError{
			Kind:    KindRequest,
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Status:  resp.StatusCode,
			Err:     err,
		}
	}

	return Response(data), nil
}

// requestErrorFrom builds a TidalRequestError from the status and body of a failed response.
func requestErrorFrom(status int, data []byte) *TidalError {
	var body apiErrorBody
	_ = json.Unmarshal(data, &body)

	message := body.UserMessage
	if message == "" {
		message = body.ErrorDescription
	}
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}

	return NewRequestError(message, status, subStatusString(body.SubStatus))
}

// subStatusString renders a subStatus that may arrive as a JSON string or number.
func subStatusString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}

	return string(raw)
}
