package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/model"
)

func validEmail() model.Email {
	return model.Email{
		ID:        "001",
		From:      "angry.customer@example.com",
		Subject:   "Broken product received",
		Body:      "It arrived damaged.",
		Timestamp: "2024-03-15T10:30:00Z",
	}
}

func TestEmail_Valid(t *testing.T) {
	assert.NoError(t, Email(validEmail()))
}

func TestEmail_MissingFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*model.Email)
	}{
		{"id", func(e *model.Email) { e.ID = "" }},
		{"from", func(e *model.Email) { e.From = "" }},
		{"subject", func(e *model.Email) { e.Subject = "" }},
		{"body", func(e *model.Email) { e.Body = "" }},
		{"timestamp", func(e *model.Email) { e.Timestamp = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			e := validEmail()
			tc.mutate(&e)

			err := Email(e)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestEmail_FirstFailureWins(t *testing.T) {
	e := validEmail()
	e.From = "bad-address"
	e.Subject = ""

	var verr *ValidationError
	require.True(t, errors.As(Email(e), &verr))
	assert.Equal(t, "from", verr.Field)
	assert.ErrorIs(t, verr, ErrInvalidValue)
}

// Only ".com" senders pass. This mirrors the existing policy and is
// expected to reject perfectly valid addresses on other TLDs.
func TestSenderPlausible_OnlyDotCom(t *testing.T) {
	cases := map[string]bool{
		"user@example.com":     true,
		"first.last@shop.com":  true,
		"user@example.org":     false,
		"user@example.co.uk":   false,
		"user@example.COM":     false,
		"user@examplecom":      false,
		"user.example.com":     false,
		"user@example.com.":    false,
		"user@mail.example.io": false,
	}
	for addr, want := range cases {
		assert.Equal(t, want, SenderPlausible(addr), addr)
	}
}

func TestEmail_InvalidSenderError(t *testing.T) {
	e := validEmail()
	e.From = "user@example.org"

	err := Email(e)
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.NotErrorIs(t, err, ErrMissingField)
	assert.Contains(t, err.Error(), "user@example.org")
}
