package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/photomart/cli/internal/models"
)

// RegisterInput is the payload for account creation. Password2 must repeat
// Password; the backend verifies it as well.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Role      string `json:"role"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

type authPayload struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Login exchanges credentials for a user record and a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, models.SessionTokens, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	var payload authPayload
	r := request{method: http.MethodPost, path: "/auth/login/", body: body, bare: true}
	if err := c.do(ctx, r, &payload); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	return payload.User, payload.Tokens, nil
}

// Register creates an account and returns the freshly issued session exactly
// as Login does.
func (c *Client) Register(ctx context.Context, input RegisterInput) (models.User, models.SessionTokens, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return models.User{}, models.SessionTokens{}, err
	}

	var payload authPayload
	r := request{method: http.MethodPost, path: "/auth/register/", body: body, bare: true}
	if err := c.do(ctx, r, &payload); err != nil {
		return models.User{}, models.SessionTokens{}, err
	}
	return payload.User, payload.Tokens, nil
}

// Profile returns the user record for the current access token.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var user models.User
	r := request{method: http.MethodGet, path: "/auth/profile/"}
	if err := c.do(ctx, r, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}
