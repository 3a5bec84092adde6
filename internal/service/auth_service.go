package service

//go:generate mockgen -source=auth_service.go -destination=mocks/mock_user_repository.go -package=mocks UserRepository

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portfoliocms/internal/config"
	"github.com/portfoliocms/internal/db"
	"github.com/portfoliocms/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost 是密码哈希的默认成本
const DefaultBcryptCost = 12

var (
	// ErrUserExists 在邮箱已被占用时返回
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials 对未知用户与错误密码一视同仁
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrResetUnauthorized 在重置令牌不匹配或未配置时返回
	ErrResetUnauthorized = errors.New("invalid reset token")
	// ErrAdminConfigMissing 与配置层共用同一个哨兵
	ErrAdminConfigMissing = config.ErrAdminConfigMissing
)

// UserRepository 是认证层依赖的用户存取接口
type UserRepository interface {
	// FindByEmail 在用户不存在时返回 nil, nil
	FindByEmail(ctx context.Context, email string) (*db.User, error)
	// Create 在邮箱冲突时返回 store.ErrConflict
	Create(ctx context.Context, user *db.User) (*db.User, error)
	DeleteAll(ctx context.Context) error
}

// StoreUserRepository 基于 store.Store 的 UserRepository 实现
type StoreUserRepository struct {
	users store.Store[db.User]
}

func NewStoreUserRepository(users store.Store[db.User]) *StoreUserRepository {
	return &StoreUserRepository{users: users}
}

func (r *StoreUserRepository) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	items, err := r.users.List(ctx, store.Query{Where: map[string]any{"email": email}, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *StoreUserRepository) Create(ctx context.Context, user *db.User) (*db.User, error) {
	return r.users.Insert(ctx, user)
}

func (r *StoreUserRepository) DeleteAll(ctx context.Context) error {
	return r.users.DeleteAll(ctx)
}

// AuthConfig 汇总认证层需要的配置
type AuthConfig struct {
	Admin      config.AdminConfig
	ResetToken string
	// BcryptCost 为 0 时使用 DefaultBcryptCost
	BcryptCost int
	Now        func() time.Time
}

// AuthService 负责凭据校验与管理员引导。
type AuthService struct {
	users      UserRepository
	admin      config.AdminConfig
	resetToken string
	cost       int
	now        func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

// NewAuthService 构造 AuthService
func NewAuthService(users UserRepository, cfg AuthConfig) *AuthService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		users:      users,
		admin:      cfg.Admin,
		resetToken: strings.TrimSpace(cfg.ResetToken),
		cost:       cost,
		now:        now,
	}
}

// NormalizeEmail 去除首尾空白并转为小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUserByEmail 在用户不存在时返回 nil, nil
func (s *AuthService) FindUserByEmail(ctx context.Context, email string) (*db.User, error) {
	return s.users.FindByEmail(ctx, NormalizeEmail(email))
}

// CurrentUser 确认会话或令牌中的身份仍对应现存用户。
// 用户已被删除或 id 不一致（例如重置后重建）时返回 nil, nil。
func (s *AuthService) CurrentUser(ctx context.Context, id, email string) (*db.User, error) {
	user, err := s.FindUserByEmail(ctx, email)
	if err != nil || user == nil {
		return nil, err
	}
	if user.ID != id {
		return nil, nil
	}
	return user, nil
}

// HashPassword 使用配置的 bcrypt 成本计算哈希
func (s *AuthService) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword 比较明文与 bcrypt 哈希
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CreateUser 哈希密码后写入，唯一约束冲突映射为 ErrUserExists
func (s *AuthService) CreateUser(ctx context.Context, email, password, name string) (*db.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, ErrMissingFields
	}

	hashed, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	user, err := s.users.Create(ctx, &db.User{
		Base:     db.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Email:    email,
		Password: hashed,
		Name:     name,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) adminCredentials() (config.AdminConfig, error) {
	return config.AppConfig{Admin: s.admin}.AdminCredentials()
}

// EnsureAdminExists 幂等地保证配置中的管理员存在。
// 返回的 bool 表示本次是否新建。并发创建输掉唯一约束竞争时会重新读取胜出者。
func (s *AuthService) EnsureAdminExists(ctx context.Context) (*db.User, bool, error) {
	admin, err := s.adminCredentials()
	if err != nil {
		return nil, false, err
	}

	existing, err := s.FindUserByEmail(ctx, admin.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	created, err := s.CreateUser(ctx, admin.Email, admin.Password, admin.Name)
	if errors.Is(err, ErrUserExists) {
		winner, findErr := s.FindUserByEmail(ctx, admin.Email)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner == nil {
			return nil, false, errors.New("ensure admin: user vanished after conflict")
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// Authenticate 校验邮箱与密码。未知用户也会执行一次 bcrypt 比较，使耗时与密码错误一致。
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	if NormalizeEmail(email) == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		return nil, ErrInvalidCredentials
	}
	if !VerifyPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("portfolio-dummy-password"), s.cost)
		if err == nil {
			s.dummyHash = hashed
		}
	})
	return s.dummyHash
}

// ResetAdmin 校验重置令牌后删除全部用户并重新创建管理员。
// 未配置令牌时任何请求都视为未授权。
func (s *AuthService) ResetAdmin(ctx context.Context, token string) (*db.User, error) {
	if s.resetToken == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(s.resetToken)) != 1 {
		return nil, ErrResetUnauthorized
	}

	admin, err := s.adminCredentials()
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("reset users: %w", err)
	}

	return s.CreateUser(ctx, admin.Email, admin.Password, admin.Name)
}
