package model

import "time"

type OTPPurpose string

const (
	OTPPurposeVerification  OTPPurpose = "verification"
	OTPPurposePasswordReset OTPPurpose = "password_reset"
)

type OTP struct {
	Email     string     `json:"email"`
	Code      string     `json:"otp"`
	Purpose   OTPPurpose `json:"purpose"`
	CreatedAt time.Time  `json:"createdAt"`
	Delivered bool       `json:"delivered"`
}

// Expired reports whether now is strictly past CreatedAt+ttl.
func (o *OTP) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(o.CreatedAt.Add(ttl))
}

type MailKind string

const (
	MailKindVerification  MailKind = "verification"
	MailKindPasswordReset MailKind = "password_reset"
)

func MailKindFor(p OTPPurpose) MailKind {
	if p == OTPPurposePasswordReset {
		return MailKindPasswordReset
	}
	return MailKindVerification
}

type MailJob struct {
	Kind  MailKind `json:"kind"`
	Email string   `json:"email"`
	Code  string   `json:"code"`
}
