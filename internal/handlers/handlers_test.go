package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"blogsupport/internal/config"
	"blogsupport/internal/models"
	"blogsupport/internal/security"
	"blogsupport/internal/service"
	"blogsupport/internal/service/servicetest"
	"blogsupport/internal/thumbnail"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router   *gin.Engine
	cfg      *config.AppConfig
	users    *servicetest.Users
	comments *servicetest.Comments
	notifier *servicetest.Notifier
	root     models.User
	member   models.User
}

func newFixture(t *testing.T, checks ...HealthCheck) *fixture {
	t.Helper()

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:      "handler-secret",
			TokenTTL:       24 * time.Hour,
			CookieName:     "auth-token",
			CookieDomain:   "localhost",
			PasswordTime:   1,
			PasswordMemory: 8 * 1024,
		},
	}

	root := models.User{ID: primitive.NewObjectID(), Name: "admin", Role: models.UserRoleRoot}
	member := models.User{ID: primitive.NewObjectID(), Name: "member", Role: models.UserRoleUser}

	f := &fixture{
		cfg:      cfg,
		users:    servicetest.NewUsers(root, member),
		comments: servicetest.NewComments(),
		notifier: &servicetest.Notifier{},
		root:     root,
		member:   member,
	}

	log := zerolog.Nop()
	hs := NewHandlerSet(log, cfg, Deps{
		Auth:         service.NewAuthService(f.users, cfg.Security, log),
		Comments:     service.NewCommentService(f.comments, f.notifier, security.NewSanitizer(), log),
		Thumbnails:   thumbnail.NewService(nil, log),
		HealthChecks: checks,
	})

	f.router = gin.New()
	hs.Register(f.router.Group(""))
	return f
}

func (f *fixture) token(t *testing.T, u models.User) string {
	t.Helper()
	tok, err := security.GenerateSessionToken(f.cfg.Security.JWTSecret, u.ID.Hex(), u.Name, time.Hour)
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(method, target string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: f.cfg.Security.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestControllerAccess(t *testing.T) {
	ctl := Controller{Public: false}
	assert.False(t, ctl.IsPublic(Route{}))
	assert.True(t, ctl.IsPublic(Route{Access: Public}))

	pub := Controller{Public: true}
	assert.True(t, pub.IsPublic(Route{}))
	assert.False(t, pub.IsPublic(Route{Access: Protected}))
}

func TestRouteTable(t *testing.T) {
	f := newFixture(t)
	routes := map[string]bool{}
	for _, r := range f.router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /auth/login",
		"POST /auth/signup",
		"GET /auth/status",
		"POST /comment/create",
		"DELETE /comment/delete",
		"PATCH /comment/update",
		"GET /comment/list",
		"GET /comment/recent",
		"GET /user/list",
		"GET /thumbnail/*path",
		"GET /healthz",
	} {
		assert.True(t, routes[want], want)
	}
	assert.False(t, routes["GET /metrics"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/auth/status"},
		{http.MethodDelete, "/comment/delete?id=" + primitive.NewObjectID().Hex()},
		{http.MethodPatch, "/comment/update"},
		{http.MethodGet, "/user/list"},
	} {
		rec := f.do(tc.method, tc.target, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.target)
		assert.JSONEq(t, `{"statusCode":401,"error":"unauthorized","message":"Unauthorized"}`, rec.Body.String())

		rec = f.do(tc.method, tc.target, nil, "garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.target)
	}
}

func TestPublicRoutesWithoutSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/comment/list?postSlug=hello", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = f.do(http.MethodGet, "/comment/recent", nil, "garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignUpSetsCookie(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/auth/signup", credentialsRequest{Name: "영희", Password: "secret12"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "영희", body["name"])
	assert.NotContains(t, body, "password")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "auth-token", c.Name)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, "localhost", c.Domain)
	assert.Equal(t, 86400, c.MaxAge)
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)

	status := f.do(http.MethodGet, "/auth/status", nil, c.Value)
	require.Equal(t, http.StatusOK, status.Code)
	assert.Equal(t, "영희", decode[map[string]any](t, status)["name"])

	dup := f.do(http.MethodPost, "/auth/signup", credentialsRequest{Name: "영희", Password: "other"}, "")
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Equal(t, service.MsgNameTaken, decode[map[string]any](t, dup)["message"])
}

func TestSessionCookieLastsOneDay(t *testing.T) {
	f := newFixture(t)
	f.cfg.Security.TokenTTL = 2 * time.Hour

	rec := f.do(http.MethodPost, "/auth/signup", credentialsRequest{Name: "철수", Password: "secret12"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, 24*60*60, cookies[0].MaxAge)
}

func TestRejectedRequestsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	f := newFixture(t)
	rec := f.do(http.MethodGet, "/user/list", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "UserController", spans[0].Name())

	var status int64
	for _, kv := range spans[0].Attributes() {
		if kv.Key == "http.status_code" {
			status = kv.Value.AsInt64()
		}
	}
	assert.Equal(t, int64(http.StatusUnauthorized), status)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/auth/signup", credentialsRequest{Name: "kim", Password: "right"}, "").Code)

	wrong := f.do(http.MethodPost, "/auth/login", credentialsRequest{Name: "kim", Password: "wrong"}, "")
	unknown := f.do(http.MethodPost, "/auth/login", credentialsRequest{Name: "nobody", Password: "right"}, "")
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())
	assert.Empty(t, wrong.Result().Cookies())

	missing := f.do(http.MethodPost, "/auth/login", credentialsRequest{Name: "kim"}, "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	ok := f.do(http.MethodPost, "/auth/login", credentialsRequest{Name: "kim", Password: "right"}, "")
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Len(t, ok.Result().Cookies(), 1)
}

func TestCreateComment(t *testing.T) {
	f := newFixture(t)

	payload := validationPayload("hello", "안녕하세요 반가워요")
	anon := f.do(http.MethodPost, "/comment/create", payload, "")
	require.Equal(t, http.StatusOK, anon.Code, anon.Body.String())
	body := decode[map[string]any](t, anon)
	assert.Equal(t, false, body["byPostAuthor"])
	assert.NotContains(t, body, "email")
	assert.NotContains(t, body, "password")
	assert.Equal(t, 1, f.notifier.Count())

	byRoot := f.do(http.MethodPost, "/comment/create", payload, f.token(t, f.root))
	require.Equal(t, http.StatusOK, byRoot.Code)
	assert.Equal(t, true, decode[map[string]any](t, byRoot)["byPostAuthor"])

	byMember := f.do(http.MethodPost, "/comment/create", payload, f.token(t, f.member))
	assert.Equal(t, false, decode[map[string]any](t, byMember)["byPostAuthor"])

	forged := f.do(http.MethodPost, "/comment/create", payload, "forged")
	require.Equal(t, http.StatusOK, forged.Code)
	assert.Equal(t, false, decode[map[string]any](t, forged)["byPostAuthor"])
}

func TestCreateComment_Validation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/comment/create", validationPayload("hello", "hello world"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "한글을 입력해 주세요.", decode[map[string]any](t, rec)["message"])
	assert.Zero(t, f.comments.Len())

	req := httptest.NewRequest(http.MethodPost, "/comment/create", strings.NewReader("{not json"))
	bad := httptest.NewRecorder()
	f.router.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestModerationOverHTTP(t *testing.T) {
	f := newFixture(t)

	created := decode[map[string]any](t, f.do(http.MethodPost, "/comment/create", validationPayload("p", "첫 댓글입니다"), ""))
	id := created["_id"].(string)
	missing := primitive.NewObjectID().Hex()

	forbidden := f.do(http.MethodDelete, "/comment/delete?id="+id, nil, f.token(t, f.member))
	notFound := f.do(http.MethodDelete, "/comment/delete?id="+missing, nil, f.token(t, f.root))
	assert.Equal(t, http.StatusBadRequest, forbidden.Code)
	assert.Equal(t, forbidden.Body.String(), notFound.Body.String())
	assert.Equal(t, service.MsgModerationDenied, decode[map[string]any](t, forbidden)["message"])

	update := f.do(http.MethodPatch, "/comment/update", map[string]string{
		"_id": id, "name": "관리자", "body": "수정된 댓글", "url": "",
	}, f.token(t, f.root))
	require.Equal(t, http.StatusOK, update.Code, update.Body.String())
	assert.Equal(t, "수정된 댓글", decode[map[string]any](t, update)["body"])

	del := f.do(http.MethodDelete, "/comment/delete?id="+id, nil, f.token(t, f.root))
	require.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, id, decode[map[string]any](t, del)["_id"])

	again := f.do(http.MethodDelete, "/comment/delete?id="+id, nil, f.token(t, f.root))
	assert.Equal(t, notFound.Body.String(), again.Body.String())
}

func TestListAndRecent(t *testing.T) {
	f := newFixture(t)

	parent := decode[map[string]any](t, f.do(http.MethodPost, "/comment/create", validationPayload("post", "부모 댓글"), ""))
	reply := validationPayload("post", "답글입니다")
	reply["parentCommentId"] = parent["_id"].(string)
	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/comment/create", reply, "").Code)
	for range 11 {
		f.do(http.MethodPost, "/comment/create", validationPayload("other", "다른 글 댓글"), "")
	}

	list := decode[[]map[string]any](t, f.do(http.MethodGet, "/comment/list?postSlug=post", nil, ""))
	require.Len(t, list, 1)
	replies := list[0]["replies"].([]any)
	require.Len(t, replies, 1)
	assert.NotContains(t, replies[0], "email")

	empty := f.do(http.MethodGet, "/comment/list", nil, "")
	assert.Equal(t, http.StatusBadRequest, empty.Code)

	assert.Len(t, decode[[]any](t, f.do(http.MethodGet, "/comment/recent", nil, "")), 5)
	assert.Len(t, decode[[]any](t, f.do(http.MethodGet, "/comment/recent?count=999", nil, "")), 10)
	assert.Len(t, decode[[]any](t, f.do(http.MethodGet, "/comment/recent?count=0", nil, "")), 1)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/user/list", nil, f.token(t, f.member))
	require.Equal(t, http.StatusOK, rec.Code)
	users := decode[[]map[string]any](t, rec)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}
}

func TestThumbnail(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/thumbnail/image-title:Hi.svg", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, thumbnail.ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), ">Hi</text>")

	bad := f.do(http.MethodGet, "/thumbnail/banner.svg", nil, "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Equal(t, "Invalid path format", bad.Body.String())
}

func TestHealth(t *testing.T) {
	healthy := newFixture(t, HealthCheck{Name: "mongo", Ping: func(context.Context) error { return nil }})
	rec := healthy.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"mongo":"ok"},"environment":"test"}`, rec.Body.String())

	failing := newFixture(t, HealthCheck{Name: "redis", Ping: func(context.Context) error { return errors.New("down") }})
	rec = failing.do(http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, rec)["status"])
}

func TestRespondError_Internal(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	respondError(c, errors.New("mongo exploded"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "exploded")
	assert.Len(t, c.Errors, 1)
}

func TestRespondError_Kinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ValidationError("bad", nil), http.StatusBadRequest, "bad_request"},
		{service.UnauthorizedError(service.MsgUnauthorized, nil), http.StatusUnauthorized, "unauthorized"},
		{&service.Error{Kind: service.Kind(99), Message: "odd"}, http.StatusInternalServerError, "internal_server_error"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		respondError(c, tc.err)

		assert.Equal(t, tc.status, rec.Code)
		assert.Equal(t, tc.code, decode[map[string]any](t, rec)["error"])
	}
}

func validationPayload(slug, body string) map[string]string {
	return map[string]string{"postSlug": slug, "body": body, "name": "손님"}
}
