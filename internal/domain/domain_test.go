package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/cbam-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBaseModel_BeforeCreate(t *testing.T) {
	t.Run("assigns id when empty", func(t *testing.T) {
		m := &domain.BaseModel{}
		assert.NoError(t, m.BeforeCreate(nil))
		assert.NotEqual(t, uuid.Nil, m.ID)
	})

	t.Run("keeps existing id", func(t *testing.T) {
		id := uuid.New()
		m := &domain.BaseModel{ID: id}
		assert.NoError(t, m.BeforeCreate(nil))
		assert.Equal(t, id, m.ID)
	})
}

func TestEntry_IsSubmitted(t *testing.T) {
	now := time.Now()
	zero := time.Time{}

	assert.False(t, (&domain.Entry{}).IsSubmitted())
	assert.False(t, (&domain.Entry{SubmittedAt: &zero}).IsSubmitted())
	assert.True(t, (&domain.Entry{SubmittedAt: &now}).IsSubmitted())
}

func TestAPIError_Error(t *testing.T) {
	assert.Equal(t, "Not Found", (&domain.APIError{Title: "Not Found"}).Error())
	assert.Equal(t, "entry missing", (&domain.APIError{Title: "Not Found", Detail: "entry missing"}).Error())
}

func TestGetValidationMessage(t *testing.T) {
	assert.Equal(t, "This field is required", domain.GetValidationMessage("required"))
	assert.Equal(t, "Validation failed: custom", domain.GetValidationMessage("custom"))
}
