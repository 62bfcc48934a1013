package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/repos"
	"github.com/coursekit/coursekit-backend/internal/requestdata"
	"github.com/coursekit/coursekit-backend/internal/types"
)

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	return &authService{
		db:            db,
		log:           log.With("service", "AuthService"),
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*types.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.Validation("invalid_email", fmt.Errorf("invalid email"))
	}
	if len(password) < 8 {
		return nil, apperr.Validation("weak_password", fmt.Errorf("password must be at least 8 characters"))
	}

	existing, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if len(existing) > 0 {
		return nil, apperr.Validation("email_taken", fmt.Errorf("email already registered"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:        uuid.New(),
		Email:     email,
		Password:  string(hash),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := as.userRepo.GetByEmails(ctx, nil, []string{email})
	if err != nil {
		return "", "", fmt.Errorf("get user by email: %w", err)
	}
	if len(users) == 0 {
		return "", "", apperr.Auth("invalid_credentials", fmt.Errorf("invalid email or password"))
	}
	user := users[0]
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", apperr.Auth("invalid_credentials", fmt.Errorf("invalid email or password"))
	}

	var access, refresh string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{user.ID}); err != nil {
			return fmt.Errorf("clear old tokens: %w", err)
		}
		var tErr error
		access, refresh, tErr = as.issueTokenPair(ctx, tx, user)
		return tErr
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	stored, err := as.userTokenRepo.GetByRefreshToken(ctx, nil, refreshToken)
	if err != nil {
		return "", "", apperr.Auth("invalid_refresh", fmt.Errorf("unknown refresh token"))
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return "", "", apperr.Auth("refresh_expired", fmt.Errorf("refresh token expired"))
	}
	users, err := as.userRepo.GetByIDs(ctx, nil, []uuid.UUID{stored.UserID})
	if err != nil || len(users) == 0 {
		return "", "", apperr.Auth("invalid_refresh", fmt.Errorf("user not found"))
	}

	var access, refresh string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteByUserIDs(ctx, tx, []uuid.UUID{stored.UserID}); err != nil {
			return fmt.Errorf("rotate tokens: %w", err)
		}
		var tErr error
		access, refresh, tErr = as.issueTokenPair(ctx, tx, users[0])
		return tErr
	})
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return apperr.ErrUnauthorized
	}
	return as.userTokenRepo.DeleteByUserIDs(ctx, nil, []uuid.UUID{rd.UserID})
}

// SetContextFromToken verifies an access token and attaches request data.
// Expired or malformed tokens come back as auth errors so the HTTP layer can
// answer 401 and the frontend can treat it as a session-expired condition.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("invalid or expired token"))
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("invalid claims"))
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return ctx, apperr.Auth("invalid_token", fmt.Errorf("invalid subject"))
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}

func (as *authService) issueTokenPair(ctx context.Context, tx *gorm.DB, user *types.User) (string, string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"iat": now.Unix(),
		"exp": now.Add(as.accessTTL).Unix(),
	}
	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", "", fmt.Errorf("sign access token: %w", err)
	}
	refresh := uuid.NewString()
	_, err = as.userTokenRepo.Create(ctx, tx, []*types.UserToken{{
		ID:           uuid.New(),
		UserID:       user.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(as.refreshTTL),
	}})
	if err != nil {
		return "", "", fmt.Errorf("store token pair: %w", err)
	}
	return access, refresh, nil
}
