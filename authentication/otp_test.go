package authentication

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dussaanushka1605/bloodsetu/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMailer struct {
	sent []string // codes, in send order
	err  error
}

func (m *fakeMailer) SendCode(email, code string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, code)
	return nil
}

func (m *fakeMailer) lastCode() string {
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

func noDuplicates(models.Role, string, string) error { return nil }

func setupBroker(t *testing.T, mailer *fakeMailer, check DuplicateChecker) (*miniredis.Miniredis, *OTPBroker) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	b := NewOTPBroker(client, mailer, check, zap.NewNop())
	t.Cleanup(b.Stop)
	return mr, b
}

func TestRequestAndVerifyRegistrationCode(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	payload := json.RawMessage(`{"name":"Asha","blood_group":"O+"}`)
	err := b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, payload)
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Len(t, mailer.lastCode(), 6)

	entry, err := b.VerifyCode(ctx, "asha@example.com", mailer.lastCode(), PurposeRegistration)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDonor, entry.Role)
	assert.JSONEq(t, string(payload), string(entry.Payload))

	// registration codes are single use
	_, err = b.VerifyCode(ctx, "asha@example.com", mailer.lastCode(), PurposeRegistration)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyCodeMismatch(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))

	_, err := b.VerifyCode(ctx, "asha@example.com", "000000", PurposeRegistration)
	assert.ErrorIs(t, err, ErrCodeMismatch)

	// a wrong guess does not burn the code
	_, err = b.VerifyCode(ctx, "asha@example.com", mailer.lastCode(), PurposeRegistration)
	assert.NoError(t, err)
}

func TestVerifyCodeExpired(t *testing.T) {
	mailer := &fakeMailer{}
	mr, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))

	mr.FastForward(CodeTTL + time.Second)

	_, err := b.VerifyCode(ctx, "asha@example.com", mailer.lastCode(), PurposeRegistration)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestVerifyCodePurposeMismatch(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))

	// a registration code must not authorize a password reset
	_, err := b.VerifyCode(ctx, "asha@example.com", mailer.lastCode(), PurposeReset)
	assert.ErrorIs(t, err, ErrCodeExpired)
}

func TestRequestCodeDuplicateIdentity(t *testing.T) {
	mailer := &fakeMailer{}
	check := func(role models.Role, email, license string) error {
		if email == "taken@example.com" {
			return ErrDuplicateEmail
		}
		if license == "LIC-42" {
			return ErrDuplicateLicense
		}
		return nil
	}
	_, b := setupBroker(t, mailer, check)
	ctx := context.Background()

	err := b.RequestCode(ctx, "taken@example.com", PurposeRegistration, models.RoleDonor, nil)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	payload := json.RawMessage(`{"license_number":"LIC-42"}`)
	err = b.RequestCode(ctx, "hosp@example.com", PurposeRegistration, models.RoleHospital, payload)
	assert.ErrorIs(t, err, ErrDuplicateLicense)

	// nothing stored, nothing sent
	assert.Empty(t, mailer.sent)
}

func TestRequestCodeDeliveryFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp unreachable")}
	_, b := setupBroker(t, mailer, noDuplicates)

	err := b.RequestCode(context.Background(), "asha@example.com", PurposeRegistration, models.RoleDonor, nil)
	assert.ErrorIs(t, err, ErrDeliveryFailure)
}

func TestRequestCodeRateLimited(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))

	err := b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil)
	assert.ErrorIs(t, err, ErrTooManyRequests)

	// a different email is not throttled by asha's limiter
	err = b.RequestCode(ctx, "ravi@example.com", PurposeRegistration, models.RoleDonor, nil)
	assert.NoError(t, err)
}

func TestNewCodeSupersedesOld(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()

	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))
	first := mailer.lastCode()

	// drop the throttle state to simulate the resend window passing
	b.mu.Lock()
	delete(b.limiters, "asha@example.com")
	b.mu.Unlock()
	require.NoError(t, b.RequestCode(ctx, "asha@example.com", PurposeRegistration, models.RoleDonor, nil))
	second := mailer.lastCode()

	if first != second {
		_, err := b.VerifyCode(ctx, "asha@example.com", first, PurposeRegistration)
		assert.ErrorIs(t, err, ErrCodeMismatch)
	}
	_, err := b.VerifyCode(ctx, "asha@example.com", second, PurposeRegistration)
	assert.NoError(t, err)
}

func TestResetFlow(t *testing.T) {
	mailer := &fakeMailer{}
	_, b := setupBroker(t, mailer, noDuplicates)
	ctx := context.Background()
	email := "asha@example.com"

	// no verified entry yet
	assert.ErrorIs(t, b.ResetAuthorized(ctx, email), ErrResetNotVerified)
	assert.ErrorIs(t, b.ConsumeReset(ctx, email), ErrResetNotVerified)

	require.NoError(t, b.RequestCode(ctx, email, PurposeReset, "", nil))

	// requested but not yet verified
	assert.ErrorIs(t, b.ResetAuthorized(ctx, email), ErrResetNotVerified)

	entry, err := b.VerifyCode(ctx, email, mailer.lastCode(), PurposeReset)
	require.NoError(t, err)
	assert.True(t, entry.Verified)

	require.NoError(t, b.ResetAuthorized(ctx, email))
	require.NoError(t, b.ConsumeReset(ctx, email))

	// consumed entries cannot authorize a second reset
	assert.ErrorIs(t, b.ResetAuthorized(ctx, email), ErrResetNotVerified)
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
	}
}
