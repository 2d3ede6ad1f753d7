package service

import (
	"context"
	"strings"
	"time"

	"bloodlink/internal/domain"
	"bloodlink/internal/repository"
	"bloodlink/internal/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 登录/登出/会话校验
type AuthService interface {
	// DonorLogin 捐献者邮箱+密码登录，发放会话 token
	DonorLogin(ctx context.Context, req DonorLoginRequest) (*LoginResponse, error)

	// AdminLogin 管理员登录
	AdminLogin(ctx context.Context, req AdminLoginRequest) (*LoginResponse, error)

	// Check 校验 token 并续期，返回会话上下文
	Check(ctx context.Context, token string) (*session.Session, error)

	// Logout 删除会话
	Logout(ctx context.Context, token string) error
}

type authService struct {
	donorsRepo repository.DonorsRepository
	adminsRepo repository.AdminsRepository
	sessions   session.Store
	logger     *zap.Logger
}

func NewAuthService(donorsRepo repository.DonorsRepository, adminsRepo repository.AdminsRepository, sessions session.Store, logger *zap.Logger) AuthService {
	return &authService{
		donorsRepo: donorsRepo,
		adminsRepo: adminsRepo,
		sessions:   sessions,
		logger:     logger,
	}
}

// ============================================
// Request/Response DTOs
// ============================================

// DonorLoginRequest 捐献者登录请求
type DonorLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token      string `json:"token"`
	Kind       string `json:"kind"` // donor | admin
	SubjectID  string `json:"subject_id"`
	Name       string `json:"name"`
	BloodGroup string `json:"blood_group,omitempty"`
	ExpiresAt  string `json:"expires_at"`
}

func (s *authService) DonorLogin(ctx context.Context, req DonorLoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "email and password are required")
	}

	donor, err := s.donorsRepo.GetDonorByEmail(ctx, email)
	if err != nil {
		if domain.KindOf(err) == domain.ErrDonorNotFound {
			s.logger.Warn("Donor login failed",
				zap.String("email", email),
				zap.String("reason", "unknown_email"),
			)
			return nil, domain.NewError(domain.ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(donor.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Donor login failed",
			zap.String("email", email),
			zap.String("reason", "bad_password"),
		)
		return nil, domain.NewError(domain.ErrUnauthorized, "invalid email or password")
	}

	token, err := s.sessions.Create(ctx, &session.Session{
		Kind:       session.KindDonor,
		SubjectID:  donor.DonorID,
		Name:       donor.Name,
		Email:      donor.Email,
		BloodGroup: string(donor.BloodGroup),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Donor logged in", zap.String("donor_id", donor.DonorID))
	return &LoginResponse{
		Token:      token,
		Kind:       string(session.KindDonor),
		SubjectID:  donor.DonorID,
		Name:       donor.Name,
		BloodGroup: string(donor.BloodGroup),
		ExpiresAt:  time.Now().Add(domain.SessionDefaultTTL).UTC().Format(time.RFC3339),
	}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req AdminLoginRequest) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "username and password are required")
	}

	admin, err := s.adminsRepo.GetAdminByUsername(ctx, username)
	if err != nil {
		if domain.KindOf(err) == domain.ErrNotFound {
			s.logger.Warn("Admin login failed",
				zap.String("username", username),
				zap.String("reason", "unknown_username"),
			)
			return nil, domain.NewError(domain.ErrUnauthorized, "invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Admin login failed",
			zap.String("username", username),
			zap.String("reason", "bad_password"),
		)
		return nil, domain.NewError(domain.ErrUnauthorized, "invalid username or password")
	}

	token, err := s.sessions.Create(ctx, &session.Session{
		Kind:      session.KindAdmin,
		SubjectID: admin.AdminID,
		Name:      admin.Username,
		Username:  admin.Username,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin logged in", zap.String("admin_id", admin.AdminID))
	return &LoginResponse{
		Token:     token,
		Kind:      string(session.KindAdmin),
		SubjectID: admin.AdminID,
		Name:      admin.Username,
		ExpiresAt: time.Now().Add(domain.SessionDefaultTTL).UTC().Format(time.RFC3339),
	}, nil
}

func (s *authService) Check(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "session token is required")
	}
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if err == session.ErrNotFound {
			return nil, domain.NewError(domain.ErrUnauthorized, "session expired or invalid")
		}
		return nil, err
	}
	// Sliding expiry while the session is active.
	if err := s.sessions.Touch(ctx, token); err != nil && err != session.ErrNotFound {
		return nil, err
	}
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
