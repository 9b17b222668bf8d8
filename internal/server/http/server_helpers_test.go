package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/and161185/mybook/internal/model"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakePurchase struct {
	calls int
	who   model.Identity
	req   model.PurchaseRequest
	out   model.PurchaseReceipt
	err   error
	panic bool
}

func (f *fakePurchase) Purchase(_ context.Context, who model.Identity, req model.PurchaseRequest) (model.PurchaseReceipt, error) {
	f.calls++
	if f.panic {
		panic("boom")
	}
	f.who, f.req = who, req
	return f.out, f.err
}

type fakeQuery struct {
	calls    int
	history  []model.Entitlement
	owned    bool
	err      error
	lastUser uuid.UUID
	lastBook uuid.UUID
}

func (f *fakeQuery) History(_ context.Context, userID uuid.UUID) ([]model.Entitlement, error) {
	f.calls++
	f.lastUser = userID
	return f.history, f.err
}

func (f *fakeQuery) IsPurchased(_ context.Context, userID, bookID uuid.UUID) (bool, error) {
	f.calls++
	f.lastUser, f.lastBook = userID, bookID
	return f.owned, f.err
}

func (f *fakeQuery) Find(context.Context, uuid.UUID, uuid.UUID) (*model.Entitlement, error) {
	f.calls++
	return nil, f.err
}

type fakeReader struct {
	calls int
	out   model.ContentView
	err   error
}

func (f *fakeReader) Read(context.Context, uuid.UUID, uuid.UUID) (model.ContentView, error) {
	f.calls++
	return f.out, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fixture struct {
	srv      *Server
	purchase *fakePurchase
	query    *fakeQuery
	reader   *fakeReader
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{purchase: &fakePurchase{}, query: &fakeQuery{}, reader: &fakeReader{}}
	f.srv = New(f.purchase, f.query, f.reader, opts)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func userHeaders(id uuid.UUID, subscribed bool) map[string]string {
	h := map[string]string{HeaderUserID: id.String()}
	if subscribed {
		h[HeaderSubscribed] = "true"
	}
	return h
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("status: want %d, got %d (%s)", code, rec.Code, rec.Body.String())
	}
}

func assertion(t *testing.T, sub string, key []byte, method jwt.SigningMethod, ttl time.Duration) string {
	t.Helper()
	now := time.Now().UTC().Add(-time.Minute)
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

var (
	jwtHS256 = jwt.SigningMethodHS256
	jwtHS512 = jwt.SigningMethodHS512
)
