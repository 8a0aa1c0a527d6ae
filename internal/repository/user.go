package repository

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/user/restoflow/internal/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists  = errors.New("邮箱或用户名已被使用")
	ErrInvalidRole = errors.New("无效的角色")
)

type UserRepository struct {
	db    *gorm.DB
	clock clockwork.Clock
}

func NewUserRepository(db *gorm.DB, clock clockwork.Clock) *UserRepository {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &UserRepository{db: db, clock: clock}
}

// Create 创建员工账号
func (r *UserRepository) Create(ctx context.Context, email, username, password, role string) (*model.User, error) {
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	// 密码哈希
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    r.clock.Now(),
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail 根据邮箱查找用户
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// FindByID 根据 ID 查找用户
func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// CheckPassword 验证密码
func (r *UserRepository) CheckPassword(user *model.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	return err == nil
}

// ListAll 获取所有用户列表
func (r *UserRepository) ListAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error
	return users, err
}

// EnsureAdmin 保证至少存在一个管理员账号，返回是否新建
func (r *UserRepository) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if _, err := r.Create(ctx, email, "admin", password, model.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
