package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/osdatum/backend/internal/auth"
	"github.com/osdatum/backend/internal/domain"
	"github.com/osdatum/backend/internal/event"
	"github.com/osdatum/backend/internal/firebase"
	apperrors "github.com/osdatum/backend/pkg/errors"
)

func newAuthService(t *testing.T, users *mockUserRepo, verifier *mockVerifier, pub *capturePublisher) *AuthService {
	t.Helper()
	tokens, err := auth.NewTokenManager("test-secret", "osdatum")
	require.NoError(t, err)
	return NewAuthService(users, tokens, verifier, testProducer(pub), testLogger(), 24*time.Hour, time.Hour)
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	users := &mockUserRepo{}
	pub := &capturePublisher{}
	svc := newAuthService(t, users, &mockVerifier{}, pub)

	var created *domain.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		}).
		Return(nil)

	regToken, err := svc.Register(context.Background(), "Alice", "a@b.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, domain.TierFree, created.SubscriptionTier)
	assert.NotEqual(t, "hunter22", created.PasswordHash)
	assert.Equal(t, 1, pub.published(event.TopicUserRegistered))

	users.On("GetByEmail", mock.Anything, "a@b.com").Return(created, nil)

	loginToken, err := svc.Login(context.Background(), "a@b.com", "hunter22")
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager("test-secret", "osdatum")
	require.NoError(t, err)
	regClaims, err := tokens.Verify(regToken)
	require.NoError(t, err)
	loginClaims, err := tokens.Verify(loginToken)
	require.NoError(t, err)
	assert.Equal(t, regClaims.UserID, loginClaims.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := &mockUserRepo{}
	pub := &capturePublisher{}
	svc := newAuthService(t, users, &mockVerifier{}, pub)

	users.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.Conflict("USER_EXISTS", "user with this email already exists"))

	_, err := svc.Register(context.Background(), "Alice", "a@b.com", "hunter22")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, 0, pub.published(event.TopicUserRegistered))
}

func TestLoginWrongPassword(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(t, users, &mockVerifier{}, &capturePublisher{})

	hash, err := bcrypt.GenerateFromPassword([]byte("right"), bcrypt.MinCost)
	require.NoError(t, err)
	users.On("GetByEmail", mock.Anything, "a@b.com").
		Return(&domain.User{ID: "u1", Email: "a@b.com", PasswordHash: string(hash)}, nil)

	_, err = svc.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(t, users, &mockVerifier{}, &capturePublisher{})

	users.On("GetByEmail", mock.Anything, "nobody@b.com").
		Return(nil, apperrors.NotFound("user", "nobody@b.com"))

	_, err := svc.Login(context.Background(), "nobody@b.com", "whatever")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
	assert.False(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLoginFirebaseAccountHasNoPassword(t *testing.T) {
	users := &mockUserRepo{}
	svc := newAuthService(t, users, &mockVerifier{}, &capturePublisher{})

	users.On("GetByEmail", mock.Anything, "g@b.com").
		Return(&domain.User{ID: "uid-1", Email: "g@b.com", PasswordHash: ""}, nil)

	_, err := svc.Login(context.Background(), "g@b.com", "anything")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidCredentials))
}

func TestExchangeFirebaseTokenRegisterCreatesUser(t *testing.T) {
	users := &mockUserRepo{}
	verifier := &mockVerifier{}
	pub := &capturePublisher{}
	svc := newAuthService(t, users, verifier, pub)

	verifier.On("Verify", mock.Anything, "fb-token").
		Return(&firebase.Profile{UID: "uid-9", Email: "new@b.com"}, nil)
	users.On("GetByEmail", mock.Anything, "new@b.com").
		Return(nil, apperrors.NotFound("user", "new@b.com")).Once()

	var created *domain.User
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*domain.User)
		}).
		Return(nil)

	session, err := svc.ExchangeFirebaseToken(context.Background(), "fb-token", ModeRegister)
	require.NoError(t, err)
	assert.Equal(t, 3600, session.ExpiresIn)

	require.NotNil(t, created)
	assert.Equal(t, "uid-9", created.ID)
	assert.Equal(t, "uid-9", created.ProviderID)
	assert.Equal(t, "new", created.Name, "name falls back to the email local part")
	assert.Equal(t, 1, pub.published(event.TopicUserRegistered))

	users.AssertNumberOfCalls(t, "Create", 1)
}

func TestExchangeFirebaseTokenLoginUnknownUser(t *testing.T) {
	users := &mockUserRepo{}
	verifier := &mockVerifier{}
	svc := newAuthService(t, users, verifier, &capturePublisher{})

	verifier.On("Verify", mock.Anything, "fb-token").
		Return(&firebase.Profile{UID: "uid-9", Email: "new@b.com"}, nil)
	users.On("GetByEmail", mock.Anything, "new@b.com").
		Return(nil, apperrors.NotFound("user", "new@b.com"))

	_, err := svc.ExchangeFirebaseToken(context.Background(), "fb-token", ModeLogin)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_REGISTERED", appErr.Code)
	assert.Equal(t, 401, appErr.Status)

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExchangeFirebaseTokenExistingUserLogin(t *testing.T) {
	users := &mockUserRepo{}
	verifier := &mockVerifier{}
	svc := newAuthService(t, users, verifier, &capturePublisher{})

	verifier.On("Verify", mock.Anything, "fb-token").
		Return(&firebase.Profile{UID: "uid-9", Email: "known@b.com", Name: "Known"}, nil)
	users.On("GetByEmail", mock.Anything, "known@b.com").
		Return(&domain.User{ID: "uid-9", Email: "known@b.com"}, nil)

	session, err := svc.ExchangeFirebaseToken(context.Background(), "fb-token", ModeLogin)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestExchangeFirebaseTokenExpired(t *testing.T) {
	users := &mockUserRepo{}
	verifier := &mockVerifier{}
	svc := newAuthService(t, users, verifier, &capturePublisher{})

	verifier.On("Verify", mock.Anything, "old-token").
		Return(nil, firebase.ErrTokenExpired)

	_, err := svc.ExchangeFirebaseToken(context.Background(), "old-token", ModeLogin)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_EXPIRED", appErr.Code)
	assert.Equal(t, 401, appErr.Status)
}

func TestExchangeFirebaseTokenInvalid(t *testing.T) {
	users := &mockUserRepo{}
	verifier := &mockVerifier{}
	svc := newAuthService(t, users, verifier, &capturePublisher{})

	verifier.On("Verify", mock.Anything, "bad-token").
		Return(nil, firebase.ErrTokenInvalid)

	_, err := svc.ExchangeFirebaseToken(context.Background(), "bad-token", ModeLogin)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "TOKEN_INVALID", appErr.Code)
}

func TestExchangeFirebaseTokenBadMode(t *testing.T) {
	svc := newAuthService(t, &mockUserRepo{}, &mockVerifier{}, &capturePublisher{})

	_, err := svc.ExchangeFirebaseToken(context.Background(), "fb-token", "refresh")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}
