package cognito

import "context"

// Client is the subset of Cognito the API uses to manage sessions. Sign-up
// and password flows run through the hosted UI.
type Client interface {
	Login(ctx context.Context, input LoginInput) (AuthOutput, error)
	RefreshTokens(ctx context.Context, input RefreshInput) (AuthOutput, error)
	GlobalSignOut(ctx context.Context, accessToken string) error
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthOutput holds the tokens issued by a successful authentication. A
// refresh leaves RefreshToken empty.
type AuthOutput struct {
	IDToken      string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int32
	TokenType    string
}

// RefreshInput needs the email only to compute the secret hash.
type RefreshInput struct {
	Email        string
	RefreshToken string
}
