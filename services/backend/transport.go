package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"mindease/models"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxResponseBytes = 8 << 20

type request struct {
	method      string
	path        string
	body        any
	raw         []byte
	contentType string
	headers     map[string]string
}

type response struct {
	status int
	body   []byte
}

func (r request) encode() ([]byte, string, error) {
	if r.raw != nil {
		return r.raw, r.contentType, nil
	}
	if r.body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(r.body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, "application/json", nil
}

// send performs the request with the session's access token. A 401 triggers
// a single token refresh and replay; a 403 means the account is blocked and
// the session is dropped.
func (c *Client) send(ctx context.Context, sess *models.SessionContext, r request) (*response, error) {
	payload, contentType, err := r.encode()
	if err != nil {
		return nil, err
	}

	resp, err := c.roundTrip(ctx, sess, r, payload, contentType)
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized && sess != nil {
		if c.refresh(ctx, sess) {
			resp, err = c.roundTrip(ctx, sess, r, payload, contentType)
			if err != nil {
				return nil, err
			}
		} else {
			c.dropSession(ctx, sess, "refresh failed")
		}
	}
	if resp.status == http.StatusForbidden && sess != nil {
		c.dropSession(ctx, sess, "account blocked")
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, sess *models.SessionContext, r request, payload []byte, contentType string) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if sess != nil && sess.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+sess.AccessToken)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &response{status: res.StatusCode, body: data}, nil
}

// refresh exchanges the refresh token for a new access token and persists it.
func (c *Client) refresh(ctx context.Context, sess *models.SessionContext) bool {
	if sess.RefreshToken == "" {
		return false
	}
	payload, _ := json.Marshal(map[string]string{"refresh": sess.RefreshToken})
	resp, err := c.roundTrip(ctx, nil, request{method: http.MethodPost, path: pathTokenRefresh}, payload, "application/json")
	if err != nil || resp.status != http.StatusOK {
		c.logger.Warn("token refresh failed", zap.String("session", sess.ID), zap.Error(err))
		return false
	}
	access := gjson.GetBytes(resp.body, "access").String()
	if access == "" {
		return false
	}
	sess.AccessToken = access
	if rotated := gjson.GetBytes(resp.body, "refresh").String(); rotated != "" {
		sess.RefreshToken = rotated
	}
	if c.sessions != nil && sess.ID != "" {
		if err := c.sessions.Save(ctx, sess); err != nil {
			c.logger.Warn("failed to persist refreshed token", zap.String("session", sess.ID), zap.Error(err))
		}
	}
	return true
}

func (c *Client) dropSession(ctx context.Context, sess *models.SessionContext, reason string) {
	c.logger.Warn("ending session", zap.String("session", sess.ID), zap.String("reason", reason))
	sess.AccessToken = ""
	sess.RefreshToken = ""
	if c.sessions != nil && sess.ID != "" {
		if err := c.sessions.Delete(ctx, sess.ID); err != nil {
			c.logger.Warn("failed to delete session", zap.String("session", sess.ID), zap.Error(err))
		}
	}
}
