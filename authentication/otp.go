package authentication

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Purpose tags what a passcode authorizes once verified.
type Purpose string

const (
	PurposeRegistration Purpose = "registration"
	PurposeReset        Purpose = "reset"
)

const (
	// CodeTTL is the verification window for a freshly issued passcode.
	CodeTTL = 60 * time.Second
	// ResetGraceTTL is how long a verified reset entry stays authorized
	// while the user submits the new password.
	ResetGraceTTL = 5 * time.Minute

	// resendInterval throttles repeat code requests per email.
	resendInterval = 30 * time.Second
	limiterIdleTTL = 10 * time.Minute
)

var (
	ErrDuplicateEmail   = errors.New("this email is already registered")
	ErrDuplicateLicense = errors.New("this license number is already registered")
	ErrCodeExpired      = errors.New("OTP expired")
	ErrCodeMismatch     = errors.New("invalid OTP")
	ErrDeliveryFailure  = errors.New("could not send OTP")
	ErrTooManyRequests  = errors.New("please wait before requesting another OTP")
	ErrResetNotVerified = errors.New("OTP verification required")
)

// PasscodeEntry is the value stored per email while a code is pending.
// For registration it carries the pending identity payload to materialize
// on success. Entries never outlive the Redis TTL.
type PasscodeEntry struct {
	Code     string          `json:"code"`
	Purpose  Purpose         `json:"purpose"`
	Role     models.Role     `json:"role,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Verified bool            `json:"verified,omitempty"`
}

// Mailer is the code delivery collaborator. A send failure must surface to
// the caller, never be swallowed.
type Mailer interface {
	SendCode(email, code string) error
}

// DuplicateChecker reports ErrDuplicateEmail / ErrDuplicateLicense when a
// registration would collide with an existing identity.
type DuplicateChecker func(role models.Role, email, licenseNumber string) error

type emailLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// OTPBroker gates identity creation and password reset behind proof of
// email ownership. The passcode store is injected so tests can run against
// an in-memory Redis.
type OTPBroker struct {
	store          *redis.Client
	mailer         Mailer
	checkDuplicate DuplicateChecker
	logger         *zap.Logger

	mu       sync.Mutex
	limiters map[string]*emailLimiter
	stopCh   chan struct{}
}

func NewOTPBroker(store *redis.Client, mailer Mailer, check DuplicateChecker, logger *zap.Logger) *OTPBroker {
	b := &OTPBroker{
		store:          store,
		mailer:         mailer,
		checkDuplicate: check,
		logger:         logger,
		limiters:       make(map[string]*emailLimiter),
		stopCh:         make(chan struct{}),
	}
	go b.cleanupLoop()
	return b
}

// Stop ends the limiter cleanup goroutine.
func (b *OTPBroker) Stop() {
	close(b.stopCh)
}

func otpKey(email string) string {
	return "otp:" + email
}

// RequestCode issues a fresh 6-digit code for email and dispatches it.
// A new request overwrites any prior unconsumed entry for the same email.
func (b *OTPBroker) RequestCode(ctx context.Context, email string, purpose Purpose, role models.Role, payload json.RawMessage) error {
	if !b.allow(email) {
		return ErrTooManyRequests
	}

	if purpose == PurposeRegistration {
		if role != models.RoleDonor && role != models.RoleHospital {
			return fmt.Errorf("invalid role for OTP registration: %s", role)
		}
		license := ""
		if role == models.RoleHospital {
			var fields struct {
				LicenseNumber string `json:"license_number"`
			}
			if err := json.Unmarshal(payload, &fields); err == nil {
				license = fields.LicenseNumber
			}
		}
		if err := b.checkDuplicate(role, email, license); err != nil {
			return err
		}
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	entry, err := json.Marshal(PasscodeEntry{
		Code:    code,
		Purpose: purpose,
		Role:    role,
		Payload: payload,
	})
	if err != nil {
		return err
	}

	// last write wins: the newest code supersedes older ones
	if err := b.store.Set(ctx, otpKey(email), entry, CodeTTL).Err(); err != nil {
		return err
	}

	if err := b.mailer.SendCode(email, code); err != nil {
		b.logger.Warn("OTP delivery failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	return nil
}

// VerifyCode checks code against the stored entry for email. Registration
// entries are consumed on success and returned so the caller can
// materialize the pending identity. Reset entries are re-marked as
// verified-but-not-consumed until ConsumeReset deletes them.
func (b *OTPBroker) VerifyCode(ctx context.Context, email, code string, purpose Purpose) (*PasscodeEntry, error) {
	raw, err := b.store.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, err
	}

	var entry PasscodeEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, err
	}
	if entry.Purpose != purpose {
		return nil, ErrCodeExpired
	}
	if entry.Code != code {
		return nil, ErrCodeMismatch
	}

	if purpose == PurposeReset {
		entry.Verified = true
		updated, err := json.Marshal(entry)
		if err != nil {
			return nil, err
		}
		if err := b.store.Set(ctx, otpKey(email), updated, ResetGraceTTL).Err(); err != nil {
			return nil, err
		}
		return &entry, nil
	}

	// registration codes are single use
	if err := b.store.Del(ctx, otpKey(email)).Err(); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ResetAuthorized reports whether a verified reset entry exists for email.
func (b *OTPBroker) ResetAuthorized(ctx context.Context, email string) error {
	raw, err := b.store.Get(ctx, otpKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrResetNotVerified
	}
	if err != nil {
		return err
	}

	var entry PasscodeEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return err
	}
	if entry.Purpose != PurposeReset || !entry.Verified {
		return ErrResetNotVerified
	}
	return nil
}

// ConsumeReset deletes the reset entry once the password has actually been
// changed. It fails unless a reset code was verified first.
func (b *OTPBroker) ConsumeReset(ctx context.Context, email string) error {
	if err := b.ResetAuthorized(ctx, email); err != nil {
		return err
	}
	return b.store.Del(ctx, otpKey(email)).Err()
}

func (b *OTPBroker) allow(email string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.limiters[email]
	if !ok {
		el = &emailLimiter{limiter: rate.NewLimiter(rate.Every(resendInterval), 1)}
		b.limiters[email] = el
	}
	el.lastAccess = time.Now()
	return el.limiter.Allow()
}

func (b *OTPBroker) cleanupLoop() {
	ticker := time.NewTicker(limiterIdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-b.stopCh:
			return
		case <-ticker.C:
			b.mu.Lock()
			for email, el := range b.limiters {
				if time.Since(el.lastAccess) > limiterIdleTTL {
					delete(b.limiters, email)
				}
			}
			b.mu.Unlock()
		}
	}
}

// generateCode returns a uniformly random 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
