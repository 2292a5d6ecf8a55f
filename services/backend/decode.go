package backend

import (
	"context"
	"fmt"
	"net/http"

	"mindease/models"
	"mindease/utils"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// dataRoot selects the whole body instead of an envelope field.
const dataRoot = ""

// call sends r and converts the outcome into a Result. dataPath is a gjson
// path locating the payload inside the response body.
func call[T any](ctx context.Context, c *Client, sess *models.SessionContext, r request, dataPath string) models.Result[T] {
	resp, err := c.send(ctx, sess, r)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return models.Fail[T](utils.GenericFailureMessage, 0)
	}

	if resp.status < 200 || resp.status >= 300 {
		msg := failureMessage(resp.body)
		c.logger.Warn("backend rejected request",
			zap.String("method", r.method), zap.String("path", r.path),
			zap.Int("status", resp.status), zap.String("message", msg))
		return models.Fail[T](msg, resp.status)
	}

	msg := messageOf(resp.body)
	if ok := gjson.GetBytes(resp.body, "success"); ok.Exists() && ok.Type == gjson.False {
		if msg == "" {
			msg = utils.GenericFailureMessage
		}
		c.logger.Warn("backend reported failure",
			zap.String("method", r.method), zap.String("path", r.path), zap.String("message", msg))
		return models.Fail[T](msg, resp.status)
	}

	var data T
	if _, empty := any(data).(Empty); !empty && len(resp.body) > 0 {
		raw := resp.body
		if dataPath != dataRoot {
			res := gjson.GetBytes(resp.body, dataPath)
			if !res.Exists() || res.Type == gjson.Null {
				return models.Ok(data, msg, resp.status)
			}
			raw = []byte(res.Raw)
		}
		if err := json.Unmarshal(raw, &data); err != nil {
			c.logger.Warn("unexpected backend payload",
				zap.String("path", r.path), zap.Error(err))
			return models.Fail[T](utils.GenericFailureMessage, http.StatusBadGateway)
		}
	}
	return models.Ok(data, msg, resp.status)
}

// messageOf picks the first human-readable message the backend provided.
func messageOf(body []byte) string {
	for _, key := range []string{"message", "error", "detail"} {
		res := gjson.GetBytes(body, key)
		if !res.Exists() {
			continue
		}
		if res.IsArray() {
			if first := res.Get("0"); first.Type == gjson.String && first.String() != "" {
				return first.String()
			}
			continue
		}
		if res.Type == gjson.String && res.String() != "" {
			return res.String()
		}
	}
	return ""
}

// failureMessage is messageOf with a fallback to field validation errors and
// then to the generic message.
func failureMessage(body []byte) string {
	if msg := messageOf(body); msg != "" {
		return msg
	}
	parsed := gjson.ParseBytes(body)
	var found string
	if parsed.IsObject() {
		parsed.ForEach(func(key, value gjson.Result) bool {
			if value.IsArray() {
				if first := value.Get("0"); first.Type == gjson.String {
					found = fmt.Sprintf("%s: %s", key.String(), first.String())
					return false
				}
			}
			return true
		})
	}
	if found != "" {
		return found
	}
	return utils.GenericFailureMessage
}
