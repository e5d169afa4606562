package service

import (
	"errors"

	"TutorCerdas/internal/dto"
	"TutorCerdas/internal/model"
	"TutorCerdas/internal/repository"
	"TutorCerdas/internal/utils"
)

type AuthService interface {
	Register(req dto.RegisterReq) (uint, error)
	Login(req dto.LoginReq) (*dto.LoginResp, error)
	GetUser(id uint) (*model.User, error)
}

type authService struct {
	repo      repository.UserRepository
	jwtSecret string
}

func NewAuthService(repo repository.UserRepository, jwtSecret string) AuthService {
	return &authService{repo: repo, jwtSecret: jwtSecret}
}

// Register 注册业务逻辑
func (s *authService) Register(req dto.RegisterReq) (uint, error) {
	// 1. 业务检查：用户名是否存在
	if s.repo.IsUsernameExist(req.Username) {
		return 0, errors.New("username already taken")
	}

	// 2. 密码加密
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return 0, errors.New("failed to hash password")
	}

	// 3. 组装 Model，自助注册永远不能给自己 admin
	role := req.Role
	if role != "user" {
		role = "user"
	}
	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		Role:         role,
	}

	// 4. 落库
	if err := s.repo.Create(user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// Login 登录业务逻辑
func (s *authService) Login(req dto.LoginReq) (*dto.LoginResp, error) {
	// 1. 查用户
	user, err := s.repo.GetByUsername(req.Username)
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	// 2. 比对密码
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errors.New("invalid username or password")
	}

	// 3. 签发 Token
	token, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Username, user.Role)
	if err != nil {
		return nil, errors.New("failed to issue token")
	}

	return &dto.LoginResp{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

func (s *authService) GetUser(id uint) (*model.User, error) {
	return s.repo.GetByID(id)
}
