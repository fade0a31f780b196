package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/newsox/newsox/internal/apierr"
	"github.com/newsox/newsox/internal/models"
)

// outboundRequest describes one call to the backend
type outboundRequest struct {
	method string
	path   string
	query  url.Values
	// token is sent as a bearer credential when non-empty
	token   string
	body    interface{}
	respObj interface{}
}

// execute sends req and decodes the envelope's data into req.respObj.
// Every backend call goes through here so cookie and bearer handling stay
// in one place.
func (c *Client) execute(ctx context.Context, req outboundRequest) error {
	bodyReader, err := encodeBody(req.body)
	if err != nil {
		return err
	}

	u := *c.baseURL
	u.Path = u.Path + req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	r, err := http.NewRequestWithContext(ctx, req.method, u.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request %s %s: %w", req.method, req.path, err)
	}

	requestID := newRequestID()
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Request-ID", requestID)
	if bodyReader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", fmt.Sprintf("Bearer %s", req.token))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(r)
	if err != nil {
		c.log.Debug().Err(err).
			Str("request_id", requestID).
			Str("method", req.method).
			Str("path", req.path).
			Msg("Request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if req.respObj == nil {
		drain(resp.Body)
		return nil
	}

	var env models.Envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Code != 0 && (env.Code < 200 || env.Code > 299) {
		return &apierr.Error{Status: env.Code, Code: env.Code, Message: env.Message}
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, req.respObj); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

// readAPIError turns a non-2xx response into an *apierr.Error, keeping the
// backend's message when the body is an envelope
func readAPIError(resp *http.Response) error {
	apiErr := &apierr.Error{Status: resp.StatusCode}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var env models.Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && (env.Message != "" || env.Code != 0) {
		apiErr.Code = env.Code
		apiErr.Message = env.Message
	} else if len(body) > 0 {
		apiErr.Message = string(body)
	}

	return apiErr
}
