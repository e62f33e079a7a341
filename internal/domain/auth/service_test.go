package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apotheca/internal/core/apperror"
	appctx "apotheca/internal/core/context"
	"apotheca/internal/core/id"
	"apotheca/internal/domain/pharmacy"
)

// --- Fakes ---

type nopTxManager struct{}

func (nopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[id.ID]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[id.ID]*User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, userID id.ID) error {
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) ListByPharmacy(ctx context.Context, pharmacyID string) ([]*User, error) {
	var out []*User
	for _, u := range r.users {
		if u.PharmacyID == pharmacyID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakePharmacyRepo struct {
	pharmacies map[id.ID]*pharmacy.Pharmacy
}

func (r *fakePharmacyRepo) Create(ctx context.Context, p *pharmacy.Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

func (r *fakePharmacyRepo) GetByID(ctx context.Context, pharmacyID id.ID) (*pharmacy.Pharmacy, error) {
	p, ok := r.pharmacies[pharmacyID]
	if !ok {
		return nil, apperror.NewNotFound("pharmacy", pharmacyID.String())
	}
	return p, nil
}

func (r *fakePharmacyRepo) Update(ctx context.Context, p *pharmacy.Pharmacy) error {
	r.pharmacies[p.ID] = p
	return nil
}

type recordingMailer struct {
	to     []string
	bodies []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.bodies = append(m.bodies, body)
	return nil
}

// --- Fixture ---

type fixture struct {
	service  *Service
	userRepo *fakeUserRepo
	mailer   *recordingMailer
}

func newFixture() *fixture {
	userRepo := newFakeUserRepo()
	mailer := &recordingMailer{}

	cfg := DefaultServiceConfig()
	cfg.BcryptCost = 4 // keep the tests fast

	return &fixture{
		service: NewService(
			userRepo,
			&fakePharmacyRepo{pharmacies: make(map[id.ID]*pharmacy.Pharmacy)},
			nopTxManager{},
			NewJWTService(DefaultJWTConfig("test-secret")),
			mailer,
			cfg,
		),
		userRepo: userRepo,
		mailer:   mailer,
	}
}

func (f *fixture) register(t *testing.T) *User {
	t.Helper()
	user, err := f.service.Register(context.Background(), RegisterRequest{
		PharmacyName: "Demo Pharmacy",
		Name:         "Owner",
		Email:        "Owner@Example.COM",
		Password:     "secret123",
	})
	require.NoError(t, err)
	return user
}

func userCtx(u *User) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{
		UserID:     u.ID.String(),
		PharmacyID: u.PharmacyID,
		Email:      u.Email,
		Role:       string(u.Role),
		IsAdmin:    u.Role == RoleAdmin,
	})
}

// --- Tests ---

func TestRegister(t *testing.T) {
	f := newFixture()
	user := f.register(t)

	assert.Equal(t, "owner@example.com", user.Email, "emails are stored lowercase")
	assert.Equal(t, RoleAdmin, user.Role)
	assert.True(t, user.IsPrimaryAdmin)
	assert.False(t, user.Verified)
	require.NotNil(t, user.Pending)
	assert.Equal(t, PurposeSignup, user.Pending.Purpose)
	assert.Len(t, user.Pending.Code, 6)
	assert.Equal(t, []string{"owner@example.com"}, f.mailer.to)
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture()
	f.register(t)

	_, err := f.service.Register(context.Background(), RegisterRequest{
		PharmacyName: "Other", Name: "X", Email: "owner@example.com", Password: "secret123",
	})
	require.Error(t, err, "duplicate email")

	_, err = f.service.Register(context.Background(), RegisterRequest{
		PharmacyName: "Other", Name: "X", Email: "x@example.com", Password: "short",
	})
	require.Error(t, err, "password too short")

	_, err = f.service.Register(context.Background(), RegisterRequest{
		Name: "X", Email: "x@example.com", Password: "secret123",
	})
	require.Error(t, err, "pharmacy name required")
}

func TestVerifyOTP_Signup(t *testing.T) {
	f := newFixture()
	user := f.register(t)
	code := user.Pending.Code

	session, err := f.service.VerifyOTP(context.Background(), user.Email, code, "")
	require.NoError(t, err)

	assert.True(t, session.User.Verified)
	assert.Nil(t, session.User.Pending)
	assert.NotEmpty(t, session.Token)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	f := newFixture()
	user := f.register(t)

	_, err := f.service.VerifyOTP(context.Background(), user.Email, "000000x", "")
	require.Error(t, err)
	assert.False(t, user.Verified)
}

func TestVerifyOTP_Expired(t *testing.T) {
	f := newFixture()
	user := f.register(t)
	code := user.Pending.Code

	restore := timeNow
	timeNow = func() time.Time { return time.Now().UTC().Add(OTPTTL + time.Minute) }
	defer func() { timeNow = restore }()

	_, err := f.service.VerifyOTP(context.Background(), user.Email, code, "")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestLogin(t *testing.T) {
	f := newFixture()
	user := f.register(t)

	_, err := f.service.Login(context.Background(), Credentials{Email: user.Email, Password: "secret123"})
	require.Error(t, err, "unverified account cannot log in")

	_, err = f.service.VerifyOTP(context.Background(), user.Email, user.Pending.Code, "")
	require.NoError(t, err)

	session, err := f.service.Login(context.Background(), Credentials{Email: "OWNER@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.NotNil(t, session.User.LastLoginAt)

	_, err = f.service.Login(context.Background(), Credentials{Email: user.Email, Password: "wrong-pass"})
	require.Error(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	f := newFixture()
	user := f.register(t)
	user.Verified = true

	session, err := f.service.Login(context.Background(), Credentials{Email: user.Email, Password: "secret123"})
	require.NoError(t, err)

	uc, err := NewJWTService(DefaultJWTConfig("test-secret")).ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, user.PharmacyID, uc.PharmacyID)
	assert.True(t, uc.IsAdmin)

	_, err = NewJWTService(DefaultJWTConfig("other-secret")).ValidateToken(session.Token)
	require.Error(t, err, "wrong secret must fail")
}

func TestCreateUser_InviteWithoutPassword(t *testing.T) {
	f := newFixture()
	admin := f.register(t)
	ctx := userCtx(admin)

	invited, err := f.service.CreateUser(ctx, CreateUserRequest{
		Name:  "Colleague",
		Email: "colleague@example.com",
		Role:  RolePharmacist,
	})
	require.NoError(t, err)

	require.NotNil(t, invited.Pending)
	assert.True(t, invited.Pending.PendingPasswordSet)

	// The first password arrives with the verification code.
	session, err := f.service.VerifyOTP(context.Background(), invited.Email, invited.Pending.Code, "firstpass1")
	require.NoError(t, err)
	assert.True(t, session.User.Verified)

	_, err = f.service.Login(context.Background(), Credentials{Email: invited.Email, Password: "firstpass1"})
	assert.NoError(t, err)
}

func TestDeleteUser_PrimaryAdminProtected(t *testing.T) {
	f := newFixture()
	admin := f.register(t)
	ctx := userCtx(admin)

	invited, err := f.service.CreateUser(ctx, CreateUserRequest{
		Name: "Colleague", Email: "c@example.com", Role: RolePharmacist, Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.DeleteUser(ctx, invited.ID))

	err = f.service.DeleteUser(ctx, admin.ID)
	require.Error(t, err)
}

func TestRequestProfileUpdate_AppliesOnVerify(t *testing.T) {
	f := newFixture()
	user := f.register(t)
	user.Verified = true
	ctx := userCtx(user)

	newName := "New Owner"
	require.NoError(t, f.service.RequestProfileUpdate(ctx, &newName, nil))

	require.NotNil(t, user.Pending)
	assert.Equal(t, PurposeProfileUpdate, user.Pending.Purpose)
	assert.Equal(t, "Owner", user.Name, "nothing changes before verification")

	_, err := f.service.VerifyOTP(context.Background(), user.Email, user.Pending.Code, "")
	require.NoError(t, err)
	assert.Equal(t, "New Owner", user.Name)
}

func TestResendOTP_KeepsPendingChanges(t *testing.T) {
	f := newFixture()
	user := f.register(t)
	user.Verified = true

	newName := "Renamed"
	require.NoError(t, f.service.RequestProfileUpdate(userCtx(user), &newName, nil))

	require.NoError(t, f.service.ResendOTP(context.Background(), user.Email))

	assert.Equal(t, PurposeProfileUpdate, user.Pending.Purpose)
	require.NotNil(t, user.Pending.PendingName)
	assert.Equal(t, "Renamed", *user.Pending.PendingName)

	_, err := f.service.VerifyOTP(context.Background(), user.Email, user.Pending.Code, "")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", user.Name)
	assert.Len(t, f.mailer.bodies, 3, "register, profile update, resend")
}
