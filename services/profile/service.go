package profile

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"mindease/models"
	"mindease/services/backend"
	"mindease/utils"

	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// EditableFields are the fields a user may change from the profile view, in
// display order.
var EditableFields = []string{"fullname", "age", "place", "gender", "language", "phone"}

var immutableFields = map[string]bool{"username": true, "email": true}

// fieldRules are validator tags applied to a trimmed draft before saving.
var fieldRules = map[string]struct {
	tag     string
	message string
}{
	"fullname": {"required,alphaspace", "Fullname must contain only letters"},
	"place":    {"required,max=20,alphaspace", "Place must be at most 20 characters and contain only letters"},
	"age":      {"required,number", "Age must be a number between 0 and 200"},
	"language": {"required,max=20,alphaspace", "Language must be at most 20 characters and contain only letters"},
	"phone":    {"required,number,max=12", "Phone must be numeric and up to 12 digits"},
	"gender":   {"required,oneof=Male Female", "Gender must be Male or Female"},
}

const maxImageBytes = 5 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// View is the profile screen state.
type View struct {
	Profile  models.Profile       `json:"profile"`
	ImageURL string               `json:"imageUrl,omitempty"`
	Fields   map[string]FieldForm `json:"fields"`
}

type Service struct {
	api    backend.API
	forms  FormStore
	logger *zap.Logger
}

func NewService(api backend.API, forms FormStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{api: api, forms: forms, logger: logger}
}

func checkEditable(field string) error {
	if immutableFields[field] {
		return &FieldError{Field: field, Code: "immutable", Message: "This field cannot be changed here."}
	}
	if _, ok := fieldRules[field]; !ok {
		return &FieldError{Field: field, Code: "unknownField", Message: "Unknown profile field."}
	}
	return nil
}

// ValidateField checks a trimmed value against the field's rules.
func ValidateField(field, value string) error {
	if err := checkEditable(field); err != nil {
		return err
	}
	rule := fieldRules[field]
	if err := utils.ValidateVar(value, rule.tag); err != nil {
		return &FieldError{Field: field, Code: "invalid", Message: rule.message}
	}
	if field == "age" {
		if age, err := cast.ToIntE(value); err != nil || age < 0 || age > 200 {
			return &FieldError{Field: field, Code: "invalid", Message: rule.message}
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, sess *models.SessionContext) (*models.Profile, *Form, error) {
	res := s.api.GetProfile(ctx, sess)
	if err := backend.Err(res); err != nil {
		return nil, nil, err
	}
	form, err := s.forms.Load(ctx, sess.ID)
	if err != nil {
		return nil, nil, err
	}
	return &res.Data, form, nil
}

func (s *Service) view(p *models.Profile, form *Form) *View {
	v := &View{Profile: *p, Fields: form.Snapshot(EditableFields)}
	if p.ProfileImage != nil {
		v.ImageURL = s.api.MediaURL(*p.ProfileImage)
	}
	return v
}

func (s *Service) Get(ctx context.Context, sess *models.SessionContext) (*View, error) {
	p, form, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.view(p, form), nil
}

// Edit opens a field for editing, seeded with its current value.
func (s *Service) Edit(ctx context.Context, sess *models.SessionContext, field string) (*View, error) {
	if err := checkEditable(field); err != nil {
		return nil, err
	}
	p, form, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	current, _ := p.Field(field)
	if err := form.Edit(field, current); err != nil {
		return nil, err
	}
	if err := s.forms.Save(ctx, sess.ID, form); err != nil {
		return nil, err
	}
	return s.view(p, form), nil
}

func (s *Service) SetDraft(ctx context.Context, sess *models.SessionContext, field, value string) (*View, error) {
	if err := checkEditable(field); err != nil {
		return nil, err
	}
	p, form, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := form.SetDraft(field, value); err != nil {
		return nil, err
	}
	if err := s.forms.Save(ctx, sess.ID, form); err != nil {
		return nil, err
	}
	return s.view(p, form), nil
}

// Save commits one field. On failure the field stays in Editing with its
// draft and the returned error carries the reason.
func (s *Service) Save(ctx context.Context, sess *models.SessionContext, field string) (*View, error) {
	if err := checkEditable(field); err != nil {
		return nil, err
	}
	p, form, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	draft, err := form.BeginSave(field)
	if err != nil {
		return nil, err
	}
	value := strings.TrimSpace(draft)

	saveErr := ValidateField(field, value)
	if saveErr == nil {
		if err := s.forms.Save(ctx, sess.ID, form); err != nil {
			return nil, err
		}
		saveErr = backend.Err(s.api.UpdateProfileField(ctx, sess, field, value))
	}
	form.FinishSave(field, saveErr)
	if err := s.forms.Save(context.WithoutCancel(ctx), sess.ID, form); err != nil {
		s.logger.Warn("failed to persist profile form", zap.String("field", field), zap.Error(err))
	}
	if saveErr != nil {
		return s.view(p, form), saveErr
	}

	if refreshed := s.api.GetProfile(ctx, sess); refreshed.Success {
		p = &refreshed.Data
	}
	s.logger.Info("profile field updated", zap.String("user", sess.UserID), zap.String("field", field))
	return s.view(p, form), nil
}

func (s *Service) Cancel(ctx context.Context, sess *models.SessionContext, field string) (*View, error) {
	p, form, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if err := form.Cancel(field); err != nil {
		return nil, err
	}
	if err := s.forms.Save(ctx, sess.ID, form); err != nil {
		return nil, err
	}
	return s.view(p, form), nil
}

// UploadImage replaces the profile picture.
func (s *Service) UploadImage(ctx context.Context, sess *models.SessionContext, filename string, size int64, image io.Reader) (*View, error) {
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return nil, &FieldError{Field: "profile_image", Code: "invalid", Message: "Please choose an image file."}
	}
	if size > maxImageBytes {
		return nil, &FieldError{Field: "profile_image", Code: "tooLarge", Message: "Image must be 5 MB or smaller."}
	}
	if err := backend.Err(s.api.UpdateProfileImage(ctx, sess, filepath.Base(filename), image)); err != nil {
		return nil, err
	}
	return s.Get(ctx, sess)
}

// VerifyPassword confirms the current password before a change.
func (s *Service) VerifyPassword(ctx context.Context, sess *models.SessionContext, password string) error {
	if password == "" {
		return &FieldError{Field: "password", Code: "required", Message: "Please enter your current password."}
	}
	res := s.api.VerifyPassword(ctx, sess, password)
	if !res.Success {
		if res.StatusCode >= 500 || res.StatusCode == 0 {
			return backend.Err(res)
		}
		return &FieldError{Field: "password", Code: "incorrect", Message: "The password you entered is incorrect"}
	}
	return nil
}

// ChangePassword sets a new password. The caller ends the session afterwards.
func (s *Service) ChangePassword(ctx context.Context, sess *models.SessionContext, password string) error {
	if len(password) < 8 {
		return &FieldError{Field: "password", Code: "tooShort", Message: "Password must be at least 8 characters long"}
	}
	return backend.Err(s.api.ChangePassword(ctx, sess, password))
}

func (s *Service) VerifyEmail(ctx context.Context, sess *models.SessionContext, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := utils.ValidateVar(email, "required,email"); err != nil {
		return "", &FieldError{Field: "email", Code: "invalid", Message: "Please enter a valid email address."}
	}
	res := s.api.VerifyEmail(ctx, sess, email)
	if err := backend.Err(res); err != nil {
		return "", err
	}
	return res.Message, nil
}
