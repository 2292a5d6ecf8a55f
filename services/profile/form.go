package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mindease/services/backend"
	"mindease/utils"
)

// FieldState is the edit state of one profile field.
type FieldState string

const (
	Viewing FieldState = "viewing"
	Editing FieldState = "editing"
	Saving  FieldState = "saving"
)

// saveStaleAfter bounds how long a field stays in Saving when the save
// never finished, for example after a crash.
const saveStaleAfter = 2 * time.Minute

// FieldForm is the edit state of one field. Draft survives a failed save.
type FieldForm struct {
	Field       string     `json:"field"`
	State       FieldState `json:"state"`
	Draft       string     `json:"draft,omitempty"`
	Error       string     `json:"error,omitempty"`
	SavingSince time.Time  `json:"savingSince,omitempty"`
}

// busy is true while a save started less than saveStaleAfter ago.
func (ff *FieldForm) busy(now time.Time) bool {
	return ff.State == Saving && now.Sub(ff.SavingSince) < saveStaleAfter
}

// Form holds every field form of a session.
type Form struct {
	Fields    map[string]*FieldForm `json:"fields"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

func newForm() *Form {
	return &Form{Fields: map[string]*FieldForm{}}
}

// field returns the form of name, creating it in Viewing.
func (f *Form) field(name string) *FieldForm {
	if f.Fields == nil {
		f.Fields = map[string]*FieldForm{}
	}
	ff, ok := f.Fields[name]
	if !ok {
		ff = &FieldForm{Field: name, State: Viewing}
		f.Fields[name] = ff
	}
	return ff
}

// FieldError is a rejected field transition or value.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Field, e.Code, e.Message)
}

// Edit moves a field into Editing with the current value as draft.
func (f *Form) Edit(field, current string) error {
	ff := f.field(field)
	if ff.busy(time.Now()) {
		return &FieldError{Field: field, Code: "busy", Message: "This field is being saved."}
	}
	if ff.State == Saving {
		ff.State = Editing
		ff.SavingSince = time.Time{}
		ff.Error = "The previous save did not finish. Please try again."
		return nil
	}
	if ff.State == Editing {
		return nil
	}
	ff.State = Editing
	ff.Draft = current
	ff.Error = ""
	return nil
}

// SetDraft replaces the draft of a field being edited.
func (f *Form) SetDraft(field, value string) error {
	ff := f.field(field)
	if ff.State != Editing {
		return &FieldError{Field: field, Code: "notEditing", Message: "Start editing this field first."}
	}
	ff.Draft = value
	return nil
}

// BeginSave moves Editing to Saving and returns the draft to commit.
func (f *Form) BeginSave(field string) (string, error) {
	ff := f.field(field)
	if ff.State != Editing {
		return "", &FieldError{Field: field, Code: "notEditing", Message: "Start editing this field first."}
	}
	ff.State = Saving
	ff.SavingSince = time.Now()
	ff.Error = ""
	return ff.Draft, nil
}

// FinishSave ends a save: success returns to Viewing, failure back to Editing
// with the draft kept and the reason recorded.
func (f *Form) FinishSave(field string, saveErr error) {
	ff := f.field(field)
	if saveErr == nil {
		delete(f.Fields, field)
		return
	}
	ff.State = Editing
	ff.SavingSince = time.Time{}
	ff.Error = errorMessage(saveErr)
}

// Cancel discards the draft and returns the field to Viewing.
func (f *Form) Cancel(field string) error {
	ff := f.field(field)
	if ff.busy(time.Now()) {
		return &FieldError{Field: field, Code: "busy", Message: "This field is being saved."}
	}
	delete(f.Fields, field)
	return nil
}

// Snapshot lists every field form, Viewing included, for the given field names.
func (f *Form) Snapshot(fields []string) map[string]FieldForm {
	out := make(map[string]FieldForm, len(fields))
	for _, name := range fields {
		if ff, ok := f.Fields[name]; ok {
			out[name] = *ff
			continue
		}
		out[name] = FieldForm{Field: name, State: Viewing}
	}
	return out
}

func errorMessage(err error) string {
	var ferr *FieldError
	if errors.As(err, &ferr) {
		return ferr.Message
	}
	var failure *backend.Failure
	if errors.As(err, &failure) {
		return failure.Message
	}
	return utils.GenericFailureMessage
}

// FormStore persists profile forms per portal session.
type FormStore interface {
	Load(ctx context.Context, sessionID string) (*Form, error)
	Save(ctx context.Context, sessionID string, form *Form) error
}

type RedisFormStore struct {
	docs *utils.JSONStore[Form]
}

func NewRedisFormStore(docs *utils.JSONStore[Form]) *RedisFormStore {
	return &RedisFormStore{docs: docs}
}

func (s *RedisFormStore) Load(ctx context.Context, sessionID string) (*Form, error) {
	form, err := s.docs.Get(ctx, sessionID)
	if errors.Is(err, utils.ErrNotFound) {
		return newForm(), nil
	}
	if err != nil {
		return nil, err
	}
	if form.Fields == nil {
		form.Fields = map[string]*FieldForm{}
	}
	return form, nil
}

func (s *RedisFormStore) Save(ctx context.Context, sessionID string, form *Form) error {
	form.UpdatedAt = time.Now()
	return s.docs.Put(ctx, sessionID, form)
}
