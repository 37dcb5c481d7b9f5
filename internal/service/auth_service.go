package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/erapor-sd-api/internal/models"
	"github.com/noah-isme/erapor-sd-api/pkg/config"
	appErrors "github.com/noah-isme/erapor-sd-api/pkg/errors"
)

type credentialRepository interface {
	Verify(ctx context.Context, classLevel, password string) (bool, error)
	UpdatePassword(ctx context.Context, classLevel, password string) error
}

type authSettingsRepository interface {
	Get(ctx context.Context) (models.SchoolSettings, error)
	Save(ctx context.Context, settings models.SchoolSettings) error
}

// AuthService issues and validates access tokens for the two roles:
// homeroom teachers log in with their class and a shared-per-class
// password, the administrator with a fixed username.
type AuthService struct {
	credentials credentialRepository
	settings    authSettingsRepository
	jwtCfg      config.JWTConfig
	adminCfg    config.AdminConfig
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(credentials credentialRepository, settings authSettingsRepository, jwtCfg config.JWTConfig, adminCfg config.AdminConfig, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		credentials: credentials,
		settings:    settings,
		jwtCfg:      jwtCfg,
		adminCfg:    adminCfg,
		validator:   validate,
		logger:      logger,
	}
}

// TeacherLogin authenticates a homeroom teacher by class level.
func (s *AuthService) TeacherLogin(ctx context.Context, req models.TeacherLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if !models.IsValidClass(req.ClassLevel) {
		return nil, appErrors.Clone(appErrors.ErrUnknownClass, fmt.Sprintf("unknown class level %q", req.ClassLevel))
	}
	ok, err := s.credentials.Verify(ctx, req.ClassLevel, req.Password)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify credentials")
	}
	if !ok {
		s.logger.Warn("teacher login rejected", zap.String("class", req.ClassLevel))
		return nil, appErrors.ErrInvalidCredentials
	}

	name := ""
	if settings, err := s.settings.Get(ctx); err == nil {
		name = settings.Teachers[req.ClassLevel].Name
	}
	user := models.UserInfo{
		Username:   req.ClassLevel,
		Name:       name,
		Role:       models.RoleTeacher,
		ClassLevel: req.ClassLevel,
	}
	return s.issueToken(user)
}

// AdminLogin authenticates the administrator. A configured bcrypt hash
// takes precedence over the plaintext password.
func (s *AuthService) AdminLogin(ctx context.Context, req models.AdminLoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.adminCfg.Username)) != 1 {
		return nil, appErrors.ErrInvalidCredentials
	}
	if s.adminCfg.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.adminCfg.PasswordHash), []byte(req.Password)); err != nil {
			return nil, appErrors.ErrInvalidCredentials
		}
	} else if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.adminCfg.Password)) != 1 {
		return nil, appErrors.ErrInvalidCredentials
	}

	user := models.UserInfo{
		Username: s.adminCfg.Username,
		Name:     "Administrator",
		Role:     models.RoleAdmin,
	}
	return s.issueToken(user)
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}

// ChangeTeacherPassword rotates the class password after verifying the
// current one.
func (s *AuthService) ChangeTeacherPassword(ctx context.Context, classLevel string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	ok, err := s.credentials.Verify(ctx, classLevel, req.OldPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify credentials")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "current password is incorrect")
	}
	if err := s.credentials.UpdatePassword(ctx, classLevel, req.NewPassword); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}
	s.logger.Info("teacher password changed", zap.String("class", classLevel))
	return nil
}

// UpdateTeacherProfile writes the teacher identity into the settings
// snapshot. A nil photo keeps the stored one.
func (s *AuthService) UpdateTeacherProfile(ctx context.Context, classLevel string, req models.UpdateProfileRequest) (models.TeacherInfo, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.TeacherInfo{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return models.TeacherInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	info := settings.Teachers[classLevel]
	info.Name = req.Name
	info.NIP = req.NIP
	info.SignatureURL = req.SignatureURL
	if req.PhotoURL != nil {
		info.PhotoURL = *req.PhotoURL
	}
	settings.Teachers[classLevel] = info
	if err := s.settings.Save(ctx, settings); err != nil {
		return models.TeacherInfo{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	return info, nil
}

func (s *AuthService) issueToken(user models.UserInfo) (*models.LoginResponse, error) {
	now := time.Now()
	expiresAt := now.Add(s.jwtCfg.Expiration)
	claims := models.JWTClaims{
		Role:       user.Role,
		ClassLevel: user.ClassLevel,
		Name:       user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtCfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}
	return &models.LoginResponse{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtCfg.Expiration.Seconds()),
		User:        user,
		IssuedAt:    now,
	}, nil
}
