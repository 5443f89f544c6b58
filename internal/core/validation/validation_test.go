package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Email string `json:"email" validate:"required,email"`
}

type line struct {
	Quantity int `json:"quantity" validate:"min=1"`
}

type request struct {
	ID      string  `json:"id" validate:"required"`
	Status  string  `query:"status" validate:"omitempty,oneof=new shipped"`
	Contact contact `json:"contact"`
	Lines   []line  `json:"lines" validate:"required,min=1,dive"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	t.Run("Valid", func(t *testing.T) {
		assert.Nil(t, v.Struct(request{ID: "1", Contact: contact{Email: "a@example.com"}, Lines: []line{{Quantity: 1}}}))
	})

	t.Run("Violations", func(t *testing.T) {
		violations := v.Struct(request{
			Status:  "lost",
			Contact: contact{Email: "nope"},
			Lines:   []line{{Quantity: 0}},
		})

		require.Len(t, violations, 4)
		assert.Contains(t, violations, Violation{Field: "id", Message: "is required"})
		assert.Contains(t, violations, Violation{Field: "status", Message: "must be one of: new shipped"})
		assert.Contains(t, violations, Violation{Field: "contact.email", Message: "must be a valid email"})
		assert.Contains(t, violations, Violation{Field: "lines[0].quantity", Message: "must be at least 1"})
	})

	t.Run("EmptySlice", func(t *testing.T) {
		violations := v.Struct(request{ID: "1", Contact: contact{Email: "a@example.com"}, Lines: []line{}})
		require.Len(t, violations, 1)
		assert.Equal(t, "lines", violations[0].Field)
		assert.Equal(t, "must contain at least 1 item(s)", violations[0].Message)
	})
}
