package validator

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/pkg/publish"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Validator validates admin form input before it reaches the service layer.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

var validStatus = validation.By(func(value interface{}) error {
	s, _ := value.(publish.Status)
	if !s.Valid() {
		return errors.New("invalid_publish_status")
	}
	return nil
})

// ValidateArticle validates the content fields and the publish status value.
func (v *Validator) ValidateArticle(a *model.Article) error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Slug,
			validation.Required.Error("slug_required"),
			validation.Length(1, 200).Error("slug_too_long"),
			validation.Match(slugRegex).Error("invalid_slug_format"),
		),
		validation.Field(&a.Title,
			validation.Required.Error("title_required"),
			validation.Length(1, 200).Error("title_too_long"),
		),
		validation.Field(&a.Body,
			validation.Required.Error("body_required"),
		),
		validation.Field(&a.Status, validStatus),
	)
}

// ValidatePublish validates publish settings chosen explicitly by an operator.
// A scheduled record must carry a date; the zero-value draft is only valid as a
// default, never as a submitted schedule.
func (v *Validator) ValidatePublish(f publish.Fields) error {
	if !f.Status.Valid() {
		return validation.Errors{
			"publish_status": validation.NewError("invalid_publish_status", "unknown publish status"),
		}
	}
	if f.Status == publish.AvailableAfter && f.LiveAsOf == nil {
		return validation.Errors{
			"live_as_of": validation.NewError("live_as_of_required", "no date has been set"),
		}
	}
	return nil
}
