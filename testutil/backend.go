// Package testutil provides an in-process fake of the AccessMatic API for
// SDK and CLI tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Account is a user known to the fake backend.
type Account struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name,omitempty"`
	Role             string    `json:"role,omitempty"`
	OrganizationID   uuid.UUID `json:"organization_id"`
	OrganizationName string    `json:"organization_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	password         string
}

// Key is an API key held by the fake backend.
type Key struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	KeyPrefix string    `json:"key_prefix"`
	Key       string    `json:"key,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Document is a document held by the fake backend.
type Document struct {
	ID                 uuid.UUID `json:"id"`
	Filename           string    `json:"filename"`
	Status             string    `json:"status"`
	AccessibilityScore *float64  `json:"accessibility_score,omitempty"`
	PageCount          int       `json:"page_count,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// RecordedRequest is what the fake saw for one call.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Backend is a fake AccessMatic API backed by an httptest.Server.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	accounts  map[string]*Account
	tokens    map[string]*Account
	keys      []Key
	documents []Document
	plan      string
	requests  []RecordedRequest
}

// NewBackend starts a fake backend. Callers must Close it.
func NewBackend() *Backend {
	b := &Backend{
		accounts: map[string]*Account{},
		tokens:   map[string]*Account{},
		plan:     "Trial",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.handleLogin)
	mux.HandleFunc("POST /auth/register", b.handleRegister)
	mux.HandleFunc("GET /auth/me", b.authed(b.handleMe))
	mux.HandleFunc("GET /documents", b.authed(b.handleDocuments))
	mux.HandleFunc("GET /api-keys", b.authed(b.handleListKeys))
	mux.HandleFunc("POST /api-keys", b.authed(b.handleCreateKey))
	mux.HandleFunc("DELETE /api-keys/{key_id}", b.authed(b.handleRevokeKey))
	mux.HandleFunc("GET /analytics/dashboard", b.authed(b.handleAnalytics))
	b.Server = httptest.NewServer(b.record(mux))
	return b
}

// URL returns the base URL of the fake.
func (b *Backend) URL() string { return b.Server.URL }

// Close shuts down the server.
func (b *Backend) Close() { b.Server.Close() }

// AddAccount registers an account and returns it.
func (b *Backend) AddAccount(email, password string) Account {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.addAccountLocked(email, password, "")
}

func (b *Backend) addAccountLocked(email, password, fullName string) *Account {
	acct := &Account{
		ID:               uuid.New(),
		Email:            email,
		FullName:         fullName,
		Role:             "owner",
		OrganizationID:   uuid.New(),
		OrganizationName: "Acme",
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
		password:         password,
	}
	b.accounts[strings.ToLower(email)] = acct
	return acct
}

// IssueToken makes token valid for the account registered under email.
func (b *Backend) IssueToken(email, token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if acct, ok := b.accounts[strings.ToLower(email)]; ok {
		b.tokens[token] = acct
	}
}

// RevokeTokens invalidates every issued token.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = map[string]*Account{}
}

// AddDocument seeds a document.
func (b *Backend) AddDocument(doc Document) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	b.documents = append(b.documents, doc)
}

// Requests returns a copy of every request seen so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// LastRequest returns the most recent request.
func (b *Backend) LastRequest() (RecordedRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}, false
	}
	return b.requests[len(b.requests)-1], true
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := readAll(r)
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type accountHandler func(w http.ResponseWriter, r *http.Request, acct *Account)

func (b *Backend) authed(next accountHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		b.mu.Lock()
		acct := b.tokens[token]
		b.mu.Unlock()
		if acct == nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, acct)
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	b.mu.Lock()
	acct, ok := b.accounts[strings.ToLower(req.Email)]
	if !ok || acct.password != req.Password {
		b.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token := "tok_" + uuid.NewString()
	b.tokens[token] = acct
	out := *acct
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"access_token": token, "token_type": "bearer", "user": out})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	b.mu.Lock()
	if _, exists := b.accounts[strings.ToLower(req.Email)]; exists {
		b.mu.Unlock()
		writeError(w, http.StatusConflict, "Email already registered")
		return
	}
	acct := b.addAccountLocked(req.Email, req.Password, req.FullName)
	token := "tok_" + uuid.NewString()
	b.tokens[token] = acct
	out := *acct
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"access_token": token, "token_type": "bearer", "user": out})
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, acct *Account) {
	writeJSON(w, http.StatusOK, acct)
}

func (b *Backend) handleDocuments(w http.ResponseWriter, r *http.Request, _ *Account) {
	status := r.URL.Query().Get("status")
	b.mu.Lock()
	docs := make([]Document, 0, len(b.documents))
	for _, d := range b.documents {
		if status == "" || d.Status == status {
			docs = append(docs, d)
		}
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (b *Backend) handleListKeys(w http.ResponseWriter, _ *http.Request, _ *Account) {
	b.mu.Lock()
	keys := make([]Key, 0, len(b.keys))
	for _, k := range b.keys {
		k.Key = ""
		keys = append(keys, k)
	}
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, keys)
}

func (b *Backend) handleCreateKey(w http.ResponseWriter, r *http.Request, _ *Account) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	secret := "am_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	key := Key{
		ID:        uuid.New(),
		Name:      req.Name,
		KeyPrefix: secret[:8],
		Key:       secret,
		IsActive:  true,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	b.mu.Lock()
	b.keys = append(b.keys, key)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, key)
}

func (b *Backend) handleRevokeKey(w http.ResponseWriter, r *http.Request, _ *Account) {
	id, err := uuid.Parse(r.PathValue("key_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key id")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, k := range b.keys {
		if k.ID == id {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "API key not found")
}

func (b *Backend) handleAnalytics(w http.ResponseWriter, _ *http.Request, _ *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var (
		processed int
		total     float64
	)
	byStatus := map[string]int{}
	for _, d := range b.documents {
		byStatus[d.Status]++
		if d.AccessibilityScore != nil {
			processed++
			total += *d.AccessibilityScore
		}
	}
	active := 0
	for _, k := range b.keys {
		if k.IsActive {
			active++
		}
	}
	out := map[string]any{
		"total_documents":     len(b.documents),
		"processed_documents": processed,
		"active_api_keys":     active,
		"plan":                b.plan,
		"documents_by_status": byStatus,
	}
	if processed > 0 {
		out["average_score"] = total / float64(processed)
	}
	writeJSON(w, http.StatusOK, out)
}

func readAll(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(data))
	return data, err
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
