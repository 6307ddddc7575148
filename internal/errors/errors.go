package errors

var (
	ErrRecordNotFound = NewTypedError("Record not found", ErrorTypeNotFound)
	RateLimitExceeded = NewTypedError("Too many requests. Please try again later.", ErrorTypeRateLimited)

	UserAlreadyExists   = NewTypedError("User already exists", ErrorTypeConflict)
	UserNotFound        = NewTypedError("User not found", ErrorTypeNotFound)
	UserAlreadyVerified = NewTypedError("User already verified", ErrorTypeValidation)
	EmailNotVerified    = NewTypedError("Please verify your email first", ErrorTypeForbidden)
	InvalidCredentials  = NewTypedError("Invalid email or password", ErrorTypeUnauthorized)
	RoleMismatch        = NewTypedError("Invalid role for this account", ErrorTypeUnauthorized)

	OTPNotValid       = NewTypedError("Invalid OTP", ErrorTypeValidation)
	OTPExpired        = NewTypedError("OTP has expired", ErrorTypeExpired)
	OTPWrongPurpose   = NewTypedError("Invalid OTP for password reset", ErrorTypeValidation)
	OTPDeliveryFailed = NewTypedError("Email sending failed", ErrorTypeInternal)
	OTPTooManyTries   = NewTypedError("Too many invalid OTP attempts. Please request a new OTP.", ErrorTypeRateLimited)

	AuthenticationNoToken = NewTypedError("Not authorized, no token", ErrorTypeUnauthorized)
	TokenBlacklisted      = NewTypedError("Token is blacklisted. Please login again.", ErrorTypeUnauthorized)
	TokenFailed           = NewTypedError("Not authorized, token failed", ErrorTypeUnauthorized)
	ExpiredToken          = NewTypedError("Expired token", ErrorTypeUnauthorized)
	InvalidToken          = NewTypedError("Invalid token", ErrorTypeUnauthorized)
)
