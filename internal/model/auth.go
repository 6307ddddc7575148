package model

// RegisterInput arrives as JSON or multipart form. Avatar is set from the
// uploaded file only.
type RegisterInput struct {
	Username     string  `json:"username" form:"username" validate:"required,max=100"`
	Surname      string  `json:"surname" form:"surname" validate:"required,max=100"`
	Email        string  `json:"email" form:"email" validate:"required,email"`
	Password     string  `json:"password" form:"password" validate:"required,min=6"`
	UserRole     string  `json:"userRole" form:"userRole" validate:"required,role"`
	CountryCode  string  `json:"countryCode" form:"countryCode" validate:"required,countrycode"`
	MobileNumber string  `json:"mobileNumber" form:"mobileNumber" validate:"required,mobile"`
	Avatar       *string `json:"-" form:"-"`
	DateOfBirth  string  `json:"dateOfBirth" form:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender       string  `json:"gender" form:"gender" validate:"omitempty,gender"`
}

type VerifyOTPInput struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

type EmailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	UserRole string `json:"userRole" validate:"omitempty,role"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required,numeric"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type RegisterResult struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
