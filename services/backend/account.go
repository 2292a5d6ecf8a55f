package backend

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"mindease/models"

	"go.uber.org/zap"
)

func (c *Client) GetProfile(ctx context.Context, sess *models.SessionContext) models.Result[models.Profile] {
	return call[models.Profile](ctx, c, sess, request{method: http.MethodGet, path: pathProfile}, "profile_info")
}

func (c *Client) UpdateProfileField(ctx context.Context, sess *models.SessionContext, field, value string) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPatch,
		path:   pathProfile,
		body:   map[string]string{field: value},
	}, dataRoot)
}

// UpdateProfileImage uploads the image as multipart form data under "profile_image".
func (c *Client) UpdateProfileImage(ctx context.Context, sess *models.SessionContext, filename string, image io.Reader) models.Result[Empty] {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("profile_image", filename)
	if err == nil {
		_, err = io.Copy(part, image)
	}
	if err == nil {
		err = form.Close()
	}
	if err != nil {
		c.logger.Warn("failed to build image upload", zap.Error(err))
		return models.Fail[Empty]("Failed to upload image", 0)
	}
	return call[Empty](ctx, c, sess, request{
		method:      http.MethodPatch,
		path:        pathProfileImage,
		raw:         buf.Bytes(),
		contentType: form.FormDataContentType(),
	}, dataRoot)
}

func (c *Client) VerifyPassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathVerifyPassword,
		body:   map[string]string{"password": password},
	}, dataRoot)
}

func (c *Client) ChangePassword(ctx context.Context, sess *models.SessionContext, password string) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathChangePassword,
		body:   map[string]string{"password": password},
	}, dataRoot)
}

func (c *Client) VerifyEmail(ctx context.Context, sess *models.SessionContext, email string) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathVerifyEmail,
		body:   map[string]string{"email": email},
	}, dataRoot)
}

func (c *Client) GetNotifications(ctx context.Context, sess *models.SessionContext) models.Result[[]models.Notification] {
	path := pathUserNotes
	if sess != nil && sess.Role == models.RoleTherapist {
		path = pathTherapistNotes
	}
	return call[[]models.Notification](ctx, c, sess, request{method: http.MethodGet, path: path}, dataRoot)
}

func (c *Client) MarkNotificationRead(ctx context.Context, sess *models.SessionContext, id models.ID) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{
		method: http.MethodPost,
		path:   pathMarkRead,
		body:   map[string]models.ID{"id": id},
	}, dataRoot)
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context, sess *models.SessionContext) models.Result[Empty] {
	return call[Empty](ctx, c, sess, request{method: http.MethodPost, path: pathMarkAllRead}, dataRoot)
}

// withFallback replaces an empty success message.
func withFallback[T any](res models.Result[T], message string) models.Result[T] {
	if res.Message == "" {
		res.Message = message
	}
	return res
}

