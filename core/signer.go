package core

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type BearerTokenSigner struct{}

func (BearerTokenSigner) Sign(_ context.Context, req *http.Request, token string) error {
	if req == nil {
		return fmt.Errorf("core: http request is required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("core: access token is required for bearer signing")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

var _ Signer = BearerTokenSigner{}
