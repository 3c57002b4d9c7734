package gateway

import (
	"context"
	"net/http"

	"qnotes/pkg/api"
)

const authPath = "/api/auth"

// Login exchanges credentials for a bearer token. Storing the token is the caller's job.
func (c *Client) Login(ctx context.Context, creds api.Credentials) (string, error) {
	return c.authenticate(ctx, "login", authPath+"/login", creds)
}

// Register creates an account and returns its bearer token
func (c *Client) Register(ctx context.Context, creds api.Credentials) (string, error) {
	return c.authenticate(ctx, "register", authPath+"/register", creds)
}

func (c *Client) authenticate(ctx context.Context, op, path string, creds api.Credentials) (string, error) {
	var resp api.AuthResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, creds, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &OperationError{Op: op, Status: http.StatusOK, Message: "server returned an empty token"}
	}
	return resp.Token, nil
}
