package validator

import (
	"errors"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/published/backend/internal/model"
	"github.com/published/backend/pkg/publish"
)

func validArticle() *model.Article {
	return &model.Article{
		Slug:  "hello-world",
		Title: "Hello",
		Body:  "First post",
	}
}

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	var errs validation.Errors
	require.True(t, errors.As(err, &errs), "expected validation.Errors, got %T", err)
	return errs
}

func TestValidateArticle_Valid(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateArticle(validArticle()))
}

func TestValidateArticle_DraftDefaultIsValid(t *testing.T) {
	v := NewValidator()
	a := validArticle()
	a.Fields = publish.Draft()
	assert.NoError(t, v.ValidateArticle(a))
}

func TestValidateArticle_MissingFields(t *testing.T) {
	v := NewValidator()
	err := v.ValidateArticle(&model.Article{})
	require.Error(t, err)

	errs := fieldErrors(t, err)
	assert.Contains(t, errs, "slug")
	assert.Contains(t, errs, "title")
	assert.Contains(t, errs, "body")
}

func TestValidateArticle_BadSlug(t *testing.T) {
	v := NewValidator()
	for _, slug := range []string{"Hello", "hello world", "-hello", "hello--world"} {
		a := validArticle()
		a.Slug = slug
		err := v.ValidateArticle(a)
		require.Error(t, err, slug)
		assert.Contains(t, fieldErrors(t, err), "slug", slug)
	}
}

func TestValidateArticle_InvalidStatus(t *testing.T) {
	v := NewValidator()
	a := validArticle()
	a.Status = publish.Status(5)
	err := v.ValidateArticle(a)
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "publish_status")
}

func TestValidatePublish(t *testing.T) {
	v := NewValidator()
	live := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, v.ValidatePublish(publish.Fields{Status: publish.Available}))
	assert.NoError(t, v.ValidatePublish(publish.Fields{Status: publish.NeverAvailable}))
	assert.NoError(t, v.ValidatePublish(publish.Fields{Status: publish.AvailableAfter, LiveAsOf: &live}))

	err := v.ValidatePublish(publish.Fields{Status: publish.AvailableAfter})
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "live_as_of")

	err = v.ValidatePublish(publish.Fields{Status: publish.Status(-4)})
	require.Error(t, err)
	assert.Contains(t, fieldErrors(t, err), "publish_status")
}
