package service

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaekwang-park/vici/internal/cognito"
	"github.com/jaekwang-park/vici/internal/repository"
)

// AuthService manages Cognito sessions and records the users they belong to.
type AuthService struct {
	cognitoClient cognito.Client
	userRepo      repository.UserRepository
}

func NewAuthService(cognitoClient cognito.Client, userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		cognitoClient: cognitoClient,
		userRepo:      userRepo,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type RefreshInput struct {
	Email        string
	RefreshToken string
}

type TokenOutput struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

func tokenOutput(out cognito.AuthOutput) TokenOutput {
	return TokenOutput{
		IDToken:      out.IDToken,
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    out.ExpiresIn,
		TokenType:    out.TokenType,
	}
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (TokenOutput, error) {
	if input.Email == "" {
		return TokenOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.Password == "" {
		return TokenOutput{}, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}

	authOut, err := s.cognitoClient.Login(ctx, cognito.LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		return TokenOutput{}, err
	}

	sub, err := subject(authOut.IDToken)
	if err != nil {
		return TokenOutput{}, fmt.Errorf("failed to extract sub from id token: %w", err)
	}

	if _, err := s.userRepo.GetOrCreate(ctx, sub, input.Email); err != nil {
		return TokenOutput{}, fmt.Errorf("failed to get or create user: %w", err)
	}

	return tokenOutput(authOut), nil
}

func (s *AuthService) Refresh(ctx context.Context, input RefreshInput) (TokenOutput, error) {
	if input.Email == "" {
		return TokenOutput{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if input.RefreshToken == "" {
		return TokenOutput{}, fmt.Errorf("%w: refresh_token is required", ErrInvalidInput)
	}

	authOut, err := s.cognitoClient.RefreshTokens(ctx, cognito.RefreshInput{
		Email:        input.Email,
		RefreshToken: input.RefreshToken,
	})
	if err != nil {
		return TokenOutput{}, err
	}
	return tokenOutput(authOut), nil
}

func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("%w: access_token is required", ErrInvalidInput)
	}
	return s.cognitoClient.GlobalSignOut(ctx, accessToken)
}

// subject reads the sub claim of a token Cognito has just issued. The
// signature is not checked.
func subject(idToken string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("sub claim not found in JWT")
	}
	return claims.Subject, nil
}
