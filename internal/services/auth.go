package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=40"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenClaims is what the middleware gets back from a verified token.
type TokenClaims struct {
	UserID int64
	RoleID int
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*types.User, error)
	Login(ctx context.Context, input LoginInput) (*types.User, string, error)
	ParseToken(tokenString string) (*TokenClaims, error)
}

type authService struct {
	log      *logger.Logger
	users    repos.UserRepo
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users repos.UserRepo, secret string, tokenTTL time.Duration, baseLog *logger.Logger) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		log:      serviceLog,
		users:    users,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*types.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if existing, err := s.users.GetByEmail(ctx, nil, email); err == nil && existing != nil {
		return nil, apierr.Conflict("an account with this email already exists")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierr.Storage(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Storage(fmt.Errorf("hash password: %w", err))
	}

	user, err := s.users.Create(ctx, nil, &types.User{
		Email:    email,
		Username: username,
		Password: string(hash),
		RoleID:   types.RoleUser,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierr.Conflict("email or username already taken")
		}
		return nil, apierr.Storage(err)
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*types.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierr.Unauthorized("invalid email or password")
		}
		return nil, "", apierr.Storage(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, "", apierr.Unauthorized("invalid email or password")
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, "", apierr.Storage(fmt.Errorf("sign token: %w", err))
	}
	return user, token, nil
}

func (s *authService) signToken(user *types.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": user.RoleID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apierr.Unauthorized("invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierr.Unauthorized("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return nil, apierr.Unauthorized("invalid token subject")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || userID <= 0 {
		return nil, apierr.Unauthorized("invalid token subject")
	}
	roleID := types.RoleUser
	if role, ok := claims["role"].(float64); ok && types.ValidRole(int(role)) {
		roleID = int(role)
	}
	return &TokenClaims{UserID: userID, RoleID: roleID}, nil
}
