package validator

import (
	"errors"
	"testing"

	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() model.RegisterInput {
	return model.RegisterInput{
		Username:     "alice",
		Surname:      "walker",
		Email:        "alice@x.com",
		Password:     "pw123456",
		UserRole:     "player",
		CountryCode:  "+91",
		MobileNumber: "9876543210",
		DateOfBirth:  "2008-04-02",
		Gender:       "female",
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(validRegister()))
}

func TestStructCustomTags(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.RegisterInput)
		field  string
	}{
		{"bad role", func(in *model.RegisterInput) { in.UserRole = "referee" }, "userRole"},
		{"bad country code", func(in *model.RegisterInput) { in.CountryCode = "91" }, "countryCode"},
		{"short mobile", func(in *model.RegisterInput) { in.MobileNumber = "12345" }, "mobileNumber"},
		{"bad gender", func(in *model.RegisterInput) { in.Gender = "robot" }, "gender"},
		{"bad dob", func(in *model.RegisterInput) { in.DateOfBirth = "02/04/2008" }, "dateOfBirth"},
		{"missing email", func(in *model.RegisterInput) { in.Email = "" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)

			err := Struct(in)
			require.Error(t, err)

			var typed *customErrors.Error
			require.True(t, errors.As(err, &typed))
			assert.Equal(t, customErrors.ErrorTypeValidation, typed.ErrorType())

			fields, ok := typed.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestLoginRoleIsOptional(t *testing.T) {
	assert.NoError(t, Struct(model.LoginInput{Email: "a@x.com", Password: "x"}))
	assert.Error(t, Struct(model.LoginInput{Email: "a@x.com", Password: "x", UserRole: "boss"}))
}
