// Package sdk provides the AccessMatic Go SDK for the document-accessibility API.
package sdk

import (
	"net/http"
	"strings"

	"github.com/accessmatic/dashboard/sdk/go/auth"
	"github.com/accessmatic/dashboard/sdk/go/headers"
	"github.com/accessmatic/dashboard/sdk/go/session"
)

type authStrategy interface {
	Apply(req *http.Request)
}

type authChain []authStrategy

func (c authChain) Apply(req *http.Request) {
	for _, s := range c {
		if s == nil {
			continue
		}
		s.Apply(req)
	}
}

// sessionAuth reads the credential at send time so a Set or Clear takes
// effect on the very next request.
type sessionAuth struct {
	store *session.Store
}

func (s sessionAuth) Apply(req *http.Request) {
	token, ok := s.store.Get()
	if !ok {
		return
	}
	token = auth.StripBearer(token)
	if token == "" {
		return
	}
	req.Header.Set(headers.Authorization, "Bearer "+token)
}

type apiKeyAuth struct {
	key string
}

func (a apiKeyAuth) Apply(req *http.Request) {
	if a.key == "" {
		return
	}
	req.Header.Set(headers.APIKey, a.key)
}

func buildAuthChain(cfg Config, store *session.Store) authChain {
	chain := authChain{sessionAuth{store: store}}
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		chain = append(chain, apiKeyAuth{key: key})
	}
	return chain
}
