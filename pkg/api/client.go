// Package api implements the authenticated gateway to the LedgerPro REST
// API. It is a thin, fail-fast boundary: it attaches the current credential
// to every call, maps response statuses to typed errors, and couples an
// authorization denial to immediate session invalidation. It performs no
// retries and no backoff.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/NicolasHaas/ledgerpro/pkg/model"
	"github.com/NicolasHaas/ledgerpro/pkg/session"
)

// Client talks to one LedgerPro server on behalf of one session.
type Client struct {
	base    string
	http    *http.Client
	session *session.Manager
}

// NewClient creates a gateway for the given base URL, gated by sess.
func NewClient(baseURL string, sess *session.Manager) *Client {
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		session: sess,
	}
}

// Session returns the session manager gating this client.
func (c *Client) Session() *session.Manager { return c.session }

// tokenResponse mirrors the token endpoint payload.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	IsAdmin     bool   `json:"is_admin"`
}

// Authenticate submits credentials form-encoded to the token endpoint and,
// on success, installs the returned token and privilege flag into the
// session. A rejection surfaces the server's detail text verbatim as an
// *AuthError; there is no retry.
func (c *Client) Authenticate(ctx context.Context, identifier, secret string) error {
	form := url.Values{}
	form.Set("username", identifier)
	form.Set("password", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("api: build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: authenticate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api: read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &AuthError{Detail: detailFrom(body, "")}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("api: decode token response: %w", err)
	}

	c.session.Set(tok.AccessToken, tok.IsAdmin, identifier)
	slog.Info("authenticated", "user", identifier, "admin", tok.IsAdmin)
	return nil
}

// do issues one authenticated request and returns the response body on
// success. A 401 wipes the session before the error is returned, so every
// request issued afterwards fails the ErrNotAuthenticated precondition
// instead of reusing the dead token.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if !c.session.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var rd io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.session.Token())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		slog.Warn("authorization denied, clearing session", "method", method, "path", path)
		c.session.Invalidate()
		return nil, ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Status: resp.StatusCode, Detail: detailFrom(body, "")}
	}
	return body, nil
}

// get issues an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode GET %s: %w", path, err)
	}
	return nil
}

// ListCustomers fetches the full roster, transactions embedded.
func (c *Client) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := c.get(ctx, "/customers/", &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

// CreateCustomer submits a new roster entry. Server rejections come back as
// *ValidationError carrying the detail text for inline display.
func (c *Client) CreateCustomer(ctx context.Context, draft model.CustomerDraft) (*model.Customer, error) {
	body, err := c.do(ctx, http.MethodPost, "/customers/", draft)
	if err != nil {
		return nil, asValidation(err)
	}
	var created model.Customer
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("api: decode created customer: %w", err)
	}
	return &created, nil
}

// UpdateCustomer replaces the mutable fields of an existing customer.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, draft model.CustomerDraft) (*model.Customer, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/customers/%d", id), draft)
	if err != nil {
		return nil, asValidation(err)
	}
	var updated model.Customer
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("api: decode updated customer: %w", err)
	}
	return &updated, nil
}

// SearchBalances runs the server-side name/address search, each hit paired
// with its server-computed balance.
func (c *Client) SearchBalances(ctx context.Context, query string) ([]model.BalanceResult, error) {
	var results []model.BalanceResult
	path := "/customers/search/?query=" + url.QueryEscape(query)
	if err := c.get(ctx, path, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// ListTransactions fetches the full journal, unordered.
func (c *Client) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	var txs []model.Transaction
	if err := c.get(ctx, "/transactions/", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction posts one journal entry.
func (c *Client) CreateTransaction(ctx context.Context, draft model.TransactionDraft) (*model.Transaction, error) {
	body, err := c.do(ctx, http.MethodPost, "/transactions/", draft)
	if err != nil {
		return nil, err
	}
	var created model.Transaction
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("api: decode created transaction: %w", err)
	}
	return &created, nil
}

// ListUsers fetches the staff account list. Privileged sessions only; the
// server answers 403 otherwise.
func (c *Client) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	var users []model.AdminUser
	if err := c.get(ctx, "/admin/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser registers a new staff account.
func (c *Client) CreateUser(ctx context.Context, draft model.UserDraft) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/create-user", draft)
	return err
}

// DeleteUser removes a staff account by id.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/users/%d", id), nil)
	return err
}

// asValidation converts a plain request failure into a ValidationError so
// customer-form rejections keep their server detail. Session expiry and
// transport errors pass through unchanged.
func asValidation(err error) error {
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return &ValidationError{Status: rerr.Status, Detail: rerr.Detail}
	}
	return err
}

// detailFrom extracts the server's "detail" field from an error body,
// falling back when the body has some other shape.
func detailFrom(body []byte, fallback string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return fallback
}
