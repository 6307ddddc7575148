package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mambasports/team-service/internal/auth"
	"github.com/mambasports/team-service/internal/auth/repository"
	"github.com/mambasports/team-service/internal/configs"
	customErrors "github.com/mambasports/team-service/internal/errors"
	"github.com/mambasports/team-service/internal/model"
	"github.com/mambasports/team-service/pkg/jwt"
	"github.com/mambasports/team-service/pkg/metrics"
	"github.com/mambasports/team-service/pkg/password"
	"github.com/mambasports/team-service/pkg/verification"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type OTPStore interface {
	Save(ctx context.Context, otp *model.OTP) error
	Find(ctx context.Context, email string) (*model.OTP, error)
	Delete(ctx context.Context, email string) error
	Consume(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) (int64, error)
}

type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// MailDispatcher hands a mail job to a transport, either synchronously or
// through the outbox.
type MailDispatcher interface {
	Dispatch(ctx context.Context, job model.MailJob) error
}

type AuthService struct {
	userRepo   repository.UserRepository
	otps       OTPStore
	blacklist  TokenBlacklist
	dispatcher MailDispatcher
	tokens     *jwt.Manager
	cfg        *configs.Config
	log        *zap.Logger
	now        func() time.Time
	sfGroup    singleflight.Group
}

type Option func(*AuthService)

func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(
	userRepo repository.UserRepository,
	otps OTPStore,
	blacklist TokenBlacklist,
	dispatcher MailDispatcher,
	tokens *jwt.Manager,
	cfg *configs.Config,
	log *zap.Logger,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		otps:       otps,
		blacklist:  blacklist,
		dispatcher: dispatcher,
		tokens:     tokens,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, input model.RegisterInput) (*model.RegisterResult, error) {
	email := repository.NormalizeEmail(input.Email)

	role, err := model.ParseRole(input.UserRole)
	if err != nil {
		return nil, customErrors.Validation("Invalid user role")
	}
	if len(input.Password) < s.cfg.Auth.MinPasswordLength {
		return nil, s.passwordTooShort()
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsVerified:
		return nil, customErrors.UserAlreadyExists
	case err == nil:
		// A stale unverified registration gives way to the new one.
		if err := s.userRepo.DeleteUnverifiedByEmail(ctx, email); err != nil {
			return nil, customErrors.InternalServerError(err, "failed to purge unverified user")
		}
		if err := s.otps.Delete(ctx, email); err != nil {
			return nil, customErrors.InternalServerError(err, "failed to purge pending otp")
		}
	case !errors.Is(err, customErrors.ErrRecordNotFound):
		return nil, customErrors.InternalServerError(err, "failed to look up user")
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Surname:      input.Surname,
		Email:        email,
		UserRole:     role,
		IsVerified:   false,
		IsActive:     true,
		CountryCode:  input.CountryCode,
		MobileNumber: input.MobileNumber,
		Avatar:       input.Avatar,
	}
	if input.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			return nil, customErrors.Validation("Invalid date of birth")
		}
		user.DateOfBirth = &dob
	}
	if input.Gender != "" {
		g, err := model.ParseGender(input.Gender)
		if err != nil {
			return nil, customErrors.Validation("Invalid gender")
		}
		user.Gender = &g
	}

	hash, err := password.HashPassword(input.Password)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to hash password")
	}
	user.PasswordHash = hash

	if err := s.issueOTP(ctx, email, model.OTPPurposeVerification); err != nil {
		return nil, err
	}

	if err := s.userRepo.CreateNewUser(ctx, user); err != nil {
		if errors.Is(err, customErrors.UserAlreadyExists) {
			return nil, customErrors.UserAlreadyExists
		}
		return nil, customErrors.InternalServerError(err, "failed to create user")
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(role)))
	return &model.RegisterResult{Email: user.Email, UserID: user.ID}, nil
}

// issueOTP replaces any outstanding code for email, then dispatches the
// new one. A dispatch failure leaves the code persisted.
func (s *AuthService) issueOTP(ctx context.Context, email string, purpose model.OTPPurpose) error {
	code, err := verification.GenerateVerificationCode(s.cfg.Auth.OTPLength)
	if err != nil {
		return customErrors.InternalServerError(err, "failed to generate otp")
	}

	otp := &model.OTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: s.now().UTC(),
	}
	if err := s.otps.Save(ctx, otp); err != nil {
		return customErrors.InternalServerError(err, "failed to save otp")
	}
	metrics.OTPIssuedTotal.WithLabelValues(string(purpose)).Inc()

	job := model.MailJob{Kind: model.MailKindFor(purpose), Email: email, Code: code}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		s.log.Error("otp dispatch failed", zap.String("purpose", string(purpose)), zap.Error(err))
		return customErrors.OTPDeliveryFailed.Wrap(err)
	}
	return nil
}

// checkOTP loads the outstanding record for email and applies the match,
// purpose and expiry rules. An expired record is deleted.
func (s *AuthService) checkOTP(ctx context.Context, email, code string, purpose model.OTPPurpose) (*model.OTP, error) {
	otp, err := s.otps.Find(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			s.observeOTP(purpose, metrics.OutcomeFailure)
			return nil, customErrors.OTPNotValid
		}
		return nil, customErrors.InternalServerError(err, "failed to load otp")
	}

	if !verification.CodesEqual(otp.Code, code) {
		s.observeOTP(purpose, metrics.OutcomeFailure)
		return nil, s.rejectCode(ctx, email)
	}

	if otp.Purpose != purpose {
		s.observeOTP(purpose, metrics.OutcomeFailure)
		if purpose == model.OTPPurposePasswordReset {
			return nil, customErrors.OTPWrongPurpose
		}
		return nil, customErrors.OTPNotValid
	}

	if otp.Expired(s.now(), s.cfg.Auth.OTPTTL) {
		if err := s.otps.Delete(ctx, email); err != nil {
			s.log.Warn("failed to delete expired otp", zap.Error(err))
		}
		s.observeOTP(purpose, metrics.OutcomeExpired)
		return nil, customErrors.OTPExpired
	}
	return otp, nil
}

// rejectCode counts a wrong guess and burns the record once the configured
// number of failures is reached.
func (s *AuthService) rejectCode(ctx context.Context, email string) error {
	failures, err := s.otps.RecordFailure(ctx, email)
	if err != nil {
		return customErrors.InternalServerError(err, "failed to record otp attempt")
	}
	if failures < int64(s.cfg.Auth.MaxOTPAttempts) {
		return customErrors.OTPNotValid
	}
	if err := s.otps.Delete(ctx, email); err != nil {
		return customErrors.InternalServerError(err, "failed to delete otp")
	}
	s.log.Warn("otp burned after repeated failures", zap.String("email", email), zap.Int64("failures", failures))
	return customErrors.OTPTooManyTries
}

func (s *AuthService) observeOTP(purpose model.OTPPurpose, outcome string) {
	metrics.OTPVerificationsTotal.WithLabelValues(string(purpose), outcome).Inc()
}

// consumeOTP deletes the record; losing a race to another consumer counts
// as an invalid code.
func (s *AuthService) consumeOTP(ctx context.Context, email string) error {
	ok, err := s.otps.Consume(ctx, email)
	if err != nil {
		return customErrors.InternalServerError(err, "failed to consume otp")
	}
	if !ok {
		return customErrors.OTPNotValid
	}
	return nil
}

func (s *AuthService) VerifyOTP(ctx context.Context, input model.VerifyOTPInput) (*model.AuthResult, error) {
	email := repository.NormalizeEmail(input.Email)

	if _, err := s.checkOTP(ctx, email, input.OTP, model.OTPPurposeVerification); err != nil {
		return nil, err
	}
	if err := s.consumeOTP(ctx, email); err != nil {
		return nil, err
	}

	if err := s.userRepo.MarkVerified(ctx, email); err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, customErrors.UserNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to verify user")
	}
	s.observeOTP(model.OTPPurposeVerification, metrics.OutcomeSuccess)

	return s.issueSession(ctx, email)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = repository.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return customErrors.UserNotFound
		}
		return customErrors.InternalServerError(err, "failed to look up user")
	}
	if user.IsVerified && !s.cfg.Auth.AllowResendWhenVerified {
		return customErrors.UserAlreadyVerified
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return customErrors.InternalServerError(err, "failed to purge pending otp")
	}
	return s.issueOTP(ctx, email, model.OTPPurposeVerification)
}

func (s *AuthService) Login(ctx context.Context, input model.LoginInput) (*model.AuthResult, error) {
	email := repository.NormalizeEmail(input.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			return nil, customErrors.InvalidCredentials
		}
		return nil, customErrors.InternalServerError(err, "failed to look up user")
	}

	if !user.IsVerified {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, customErrors.EmailNotVerified
	}

	if input.UserRole != "" {
		role, err := model.ParseRole(input.UserRole)
		if err != nil || role != user.UserRole {
			metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			return nil, customErrors.RoleMismatch
		}
	}

	if err := password.CheckPasswordHash(input.Password, user.PasswordHash); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
		return nil, customErrors.InvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to issue token")
	}
	metrics.LoginsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &model.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = repository.NormalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return "", customErrors.NotFound("User not found with this email address")
		}
		return "", customErrors.InternalServerError(err, "failed to look up user")
	}
	if !user.IsVerified {
		return "", customErrors.EmailNotVerified
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return "", customErrors.InternalServerError(err, "failed to purge pending otp")
	}
	if err := s.issueOTP(ctx, email, model.OTPPurposePasswordReset); err != nil {
		return "", err
	}
	return user.Email, nil
}

// VerifyPasswordResetOTP checks a reset code without consuming it.
func (s *AuthService) VerifyPasswordResetOTP(ctx context.Context, input model.VerifyOTPInput) error {
	_, err := s.checkOTP(ctx, repository.NormalizeEmail(input.Email), input.OTP, model.OTPPurposePasswordReset)
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, input model.ResetPasswordInput) (*model.AuthResult, error) {
	email := repository.NormalizeEmail(input.Email)

	if len(input.NewPassword) < s.cfg.Auth.MinPasswordLength {
		return nil, s.passwordTooShort()
	}

	if _, err := s.checkOTP(ctx, email, input.OTP, model.OTPPurposePasswordReset); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, customErrors.UserNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to look up user")
	}

	if err := s.consumeOTP(ctx, email); err != nil {
		return nil, err
	}

	hash, err := password.HashPassword(input.NewPassword)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to hash password")
	}
	if err := s.userRepo.UpdateNewPassword(ctx, user.ID, hash); err != nil {
		return nil, customErrors.InternalServerError(err, "failed to update password")
	}
	s.observeOTP(model.OTPPurposePasswordReset, metrics.OutcomeSuccess)

	return s.issueSession(ctx, email)
}

func (s *AuthService) issueSession(ctx context.Context, email string) (*model.AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to load user")
	}
	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to issue token")
	}
	return &model.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) passwordTooShort() error {
	return customErrors.Validation("Password must be at least %d characters long", s.cfg.Auth.MinPasswordLength)
}

// Logout revokes token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return customErrors.AuthenticationNoToken
	}
	if err := s.blacklist.Add(ctx, token, s.tokens.RemainingTTL(token)); err != nil {
		return customErrors.InternalServerError(err, "failed to blacklist token")
	}
	if user := auth.GetCurrentUser(ctx); user != nil {
		s.log.Info("user logged out", zap.String("user_id", user.ID), zap.String("ip", auth.GetIPFromContext(ctx)))
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, customErrors.UserNotFound
		}
		return nil, customErrors.InternalServerError(err, "failed to load profile")
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user. Concurrent requests for
// the same user share one lookup.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		return nil, customErrors.InternalServerError(err, "failed to check token blacklist")
	}
	if revoked {
		return nil, customErrors.TokenBlacklisted
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, customErrors.TokenFailed
	}

	// The lookup is shared, so one caller going away must not fail the rest.
	lookupCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfGroup.Do("user:"+claims.UserID, func() (interface{}, error) {
		return s.userRepo.GetByID(lookupCtx, claims.UserID)
	})
	if err != nil {
		if errors.Is(err, customErrors.ErrRecordNotFound) {
			return nil, customErrors.TokenFailed
		}
		return nil, customErrors.InternalServerError(err, "failed to load user")
	}

	user := *v.(*model.User)
	return &user, nil
}
