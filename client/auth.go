package client

import (
	"context"
	"net/http"

	"gnomeshade/api"
)

// Register creates a user. It does not log in.
func (c *Client) Register(ctx context.Context, in api.Register) (api.UserInfo, error) {
	var out api.UserInfo
	_, err := c.do(ctx, http.MethodPost, api.V1+"/authentication/register", nil, in, &out)
	return out, err
}

// Login authenticates and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (api.LoginResult, error) {
	var out api.LoginResult
	_, err := c.do(ctx, http.MethodPost, api.V1+"/authentication/login", nil,
		api.Login{Username: username, Password: password}, &out)
	if err != nil {
		return out, err
	}
	c.SetToken(out.Token)
	return out, nil
}

func (c *Client) Logout() {
	c.SetToken("")
}

func (c *Client) Info(ctx context.Context) (api.UserInfo, error) {
	return get[api.UserInfo](ctx, c, api.V1+"/authentication/info", nil)
}
