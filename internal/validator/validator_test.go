package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDateYMDValidation(t *testing.T) {
	v := NewValidator()

	type input struct {
		Date string `validate:"date_ymd"`
	}

	assert.NoError(t, v.Struct(input{Date: "2026-02-27"}))
	assert.Error(t, v.Struct(input{Date: "27-02-2026"}))
	assert.Error(t, v.Struct(input{Date: "2026-02-30"}))
	assert.Error(t, v.Struct(input{Date: "tomorrow"}))
}

func TestTimezoneValidation(t *testing.T) {
	v := NewValidator()

	type input struct {
		TZ string `validate:"iana_tz"`
	}

	assert.NoError(t, v.Struct(input{TZ: "America/Los_Angeles"}))
	assert.NoError(t, v.Struct(input{TZ: "Asia/Kolkata"}))
	assert.Error(t, v.Struct(input{TZ: "Mars/Olympus_Mons"}))
}
