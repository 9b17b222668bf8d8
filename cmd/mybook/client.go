package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/mybook/internal/convert"
	httpserver "github.com/and161185/mybook/internal/server/http"
)

const assertionTTL = 5 * time.Minute

// apiClient calls the mybook HTTP API on behalf of one user, playing the gateway role.
type apiClient struct {
	base       string
	hc         *http.Client
	userID     u.UUID
	subscribed bool
	gwKey      []byte
	now        func() time.Time
}

func newAPIClient(base string, p profile, gwKey string) (*apiClient, error) {
	id, err := u.FromString(p.UserID)
	if err != nil {
		return nil, fmt.Errorf("bad user id: %w", err)
	}
	return &apiClient{
		base:       strings.TrimRight(base, "/"),
		hc:         &http.Client{Timeout: 30 * time.Second},
		userID:     id,
		subscribed: p.Subscribed,
		gwKey:      []byte(gwKey),
		now:        time.Now,
	}, nil
}

// apiError is a non-2xx answer from the service.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("http %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *apiClient) purchase(ctx context.Context, req convert.PurchaseRequest) (convert.PurchaseResponse, error) {
	var out convert.PurchaseResponse
	err := c.do(ctx, http.MethodPost, "/myBook/purchase", req, &out)
	return out, err
}

func (c *apiClient) history(ctx context.Context) ([]convert.HistoryItem, error) {
	var out []convert.HistoryItem
	err := c.do(ctx, http.MethodGet, "/myBook/history", nil, &out)
	return out, err
}

func (c *apiClient) read(ctx context.Context, bookID string) (convert.ReadResponse, error) {
	var out convert.ReadResponse
	err := c.do(ctx, http.MethodGet, "/myBook/read/"+bookID, nil, &out)
	return out, err
}

func (c *apiClient) check(ctx context.Context, bookID string) (bool, error) {
	var out convert.CheckResponse
	err := c.do(ctx, http.MethodGet, "/myBook/check/"+bookID, nil, &out)
	return out.IsPurchased, err
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.setIdentity(req); err != nil {
		return err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return &apiError{Status: resp.StatusCode, Code: eb.Code, Message: eb.Message}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) setIdentity(req *http.Request) error {
	req.Header.Set(httpserver.HeaderUserID, c.userID.String())
	req.Header.Set(httpserver.HeaderSubscribed, fmt.Sprint(c.subscribed))
	if len(c.gwKey) == 0 {
		return nil
	}
	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   c.userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.gwKey)
	if err != nil {
		return fmt.Errorf("sign assertion: %w", err)
	}
	req.Header.Set(httpserver.HeaderAssertion, tok)
	return nil
}
