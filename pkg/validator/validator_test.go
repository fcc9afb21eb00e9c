package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submission struct {
	Email   string `json:"email" validate:"required,email"`
	Country string `json:"country" validate:"required,len=2"`
	Status  string `json:"status" validate:"omitempty,oneof=pending verified failed"`
}

func TestValidate(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(submission{Email: "a@b.co", Country: "US"}))

	err := v.Validate(submission{Country: "USA", Status: "odd"})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 3)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "country", errs[1].Field)
	assert.Equal(t, "status must be one of [pending verified failed]", errs[2].Error())
}

func TestValidateFieldPublicIP(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateField("ip", "203.0.113.7", "required", "public_ip"))
	assert.NoError(t, v.ValidateField("ip", "192.168.1.1", "public_ip"))

	err := v.ValidateField("ip", "127.0.0.1", "public_ip")
	assert.EqualError(t, err, "ip must be a routable IP address")

	err = v.ValidateField("ip", "not-an-ip", "required", "public_ip")
	assert.Error(t, err)
}

func TestEngine(t *testing.T) {
	assert.NotNil(t, Engine(New()))
}
