package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"

	"github.com/libradesk/library-backend/internal/errs"
	"github.com/libradesk/library-backend/internal/model"
	"github.com/libradesk/library-backend/pkg/auth"
)

const tokenTTL = 24 * time.Hour

var ErrInvalidCredentials = errors.New("invalid credentials")

func (s *Service) RegisterUser(ctx context.Context, req model.UserCreateRequest) error {
	user := model.User{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return errors.WithMessagef(errs.ErrConflict, "username %q", req.Username)
		}
		return err
	}
	return nil
}

func (s *Service) Authorize(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if user.Password != req.Password {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	claims := &auth.Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(tokenTTL)),
		},
	}
	claims.Profile.Username = user.Username
	claims.Profile.Role = user.Role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(auth.JWTKey)
	if err != nil {
		return model.AuthResponse{}, err
	}
	return model.AuthResponse{Token: tokenString}, nil
}
