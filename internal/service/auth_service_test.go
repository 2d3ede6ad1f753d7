package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
	"bloodlink/internal/session"
)

type authFixture struct {
	donors *repository.MemoryDonorsRepo
	admins *repository.MemoryAdminsRepo
	redis  *miniredis.Miniredis
	svc    AuthService
}

func setupAuthService(t *testing.T) *authFixture {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	donors := repository.NewMemoryDonorsRepo()
	admins := repository.NewMemoryAdminsRepo()
	sessions := session.NewRedisStore(client, time.Hour)
	return &authFixture{
		donors: donors,
		admins: admins,
		redis:  mr,
		svc:    NewAuthService(donors, admins, sessions, zap.NewNop()),
	}
}

func (f *authFixture) addDonor(t *testing.T, email, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := f.donors.CreateDonor(context.Background(), &domain.Donor{
		Name: "John Smith", Age: 30, Gender: domain.GenderMale,
		BloodGroup: domain.OPos, Contact: "+1 555 000 1111",
		Location: "Springfield", Email: email,
		PasswordHash: string(hash), Verified: true,
	})
	require.NoError(t, err)
	return id
}

func TestDonorLogin_Success(t *testing.T) {
	f := setupAuthService(t)
	donorID := f.addDonor(t, "john@example.com", "secret123")
	ctx := context.Background()

	resp, err := f.svc.DonorLogin(ctx, DonorLoginRequest{Email: "John@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, donorID, resp.SubjectID)
	assert.Equal(t, "O+", resp.BloodGroup)

	sess, err := f.svc.Check(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, session.KindDonor, sess.Kind)
	assert.Equal(t, "john@example.com", sess.Email)
}

func TestDonorLogin_WrongPassword(t *testing.T) {
	f := setupAuthService(t)
	f.addDonor(t, "john@example.com", "secret123")

	_, err := f.svc.DonorLogin(context.Background(), DonorLoginRequest{Email: "john@example.com", Password: "wrong"})
	assert.Equal(t, domain.ErrUnauthorized, domain.KindOf(err))
}

func TestDonorLogin_UnknownEmail(t *testing.T) {
	f := setupAuthService(t)

	_, err := f.svc.DonorLogin(context.Background(), DonorLoginRequest{Email: "nobody@example.com", Password: "x"})
	// same error as a bad password; no account enumeration
	assert.Equal(t, domain.ErrUnauthorized, domain.KindOf(err))
}

func TestAdminLogin_Success(t *testing.T) {
	f := setupAuthService(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = f.admins.CreateAdmin(context.Background(), &domain.Admin{Username: "admin", PasswordHash: string(hash)})
	require.NoError(t, err)

	resp, err := f.svc.AdminLogin(context.Background(), AdminLoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, string(session.KindAdmin), resp.Kind)

	sess, err := f.svc.Check(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, session.KindAdmin, sess.Kind)
	assert.Equal(t, "admin", sess.Username)
}

func TestCheck_ExpiredSession(t *testing.T) {
	f := setupAuthService(t)
	f.addDonor(t, "john@example.com", "secret123")

	resp, err := f.svc.DonorLogin(context.Background(), DonorLoginRequest{Email: "john@example.com", Password: "secret123"})
	require.NoError(t, err)

	f.redis.FastForward(2 * time.Hour)

	_, err = f.svc.Check(context.Background(), resp.Token)
	assert.Equal(t, domain.ErrUnauthorized, domain.KindOf(err))
}

func TestLogout_InvalidatesSession(t *testing.T) {
	f := setupAuthService(t)
	f.addDonor(t, "john@example.com", "secret123")
	ctx := context.Background()

	resp, err := f.svc.DonorLogin(ctx, DonorLoginRequest{Email: "john@example.com", Password: "secret123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, resp.Token))
	_, err = f.svc.Check(ctx, resp.Token)
	assert.Equal(t, domain.ErrUnauthorized, domain.KindOf(err))
}
