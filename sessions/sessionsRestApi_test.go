package sessions_test

import (
	"net/http"
	"net/http/httptest"
	"snagline/account"
	"snagline/bizerror"
	"snagline/session"
	"snagline/sessions"
	"snagline/testinfra"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func sessionsTestSetup(t *testing.T, testDatabase **testinfra.TestDatabase) *gin.Engine {
	db := testinfra.StartTestDatabase("snagline")
	*testDatabase = db
	Expect(db.DS.GormDB(nil).AutoMigrate(&account.User{}).Error).To(BeNil())
	Expect(db.DS.GormDB(nil).Create(&account.User{ID: 1, Name: "dana", Nickname: "Dana",
		Secret: account.HashSha256("secret1"), Role: account.RoleDeveloper}).Error).To(BeNil())

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	sessions.RegisterSessionsHandler(router)
	return router
}

func sessionsTestTeardown(t *testing.T, testDatabase *testinfra.TestDatabase) {
	session.TokenCache.Flush()
	if testDatabase != nil {
		testinfra.StopTestDatabase(testDatabase)
	}
}

func TestSimpleLoginHandler(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should reject unknown credentials", func(t *testing.T) {
		defer sessionsTestTeardown(t, testDatabase)
		router := sessionsTestSetup(t, &testDatabase)

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions",
			strings.NewReader(`{"name":"dana","password":"wrong"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated", "data":null}`))
	})

	t.Run("should issue a cookie-backed session on valid login", func(t *testing.T) {
		defer sessionsTestTeardown(t, testDatabase)
		router := sessionsTestSetup(t, &testDatabase)

		req := httptest.NewRequest(http.MethodPost, "/v1/sessions",
			strings.NewReader(`{"name":"dana","password":"secret1"}`))
		status, _, resp := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		cookies := resp.Result().Cookies()
		Expect(len(cookies)).To(Equal(1))
		Expect(cookies[0].Name).To(Equal(session.KeySecToken))
		Expect(cookies[0].Value).ToNot(BeEmpty())

		cached, found := session.TokenCache.Get(cookies[0].Value)
		Expect(found).To(BeTrue())
		secCtx := cached.(*session.Session)
		Expect(secCtx.Identity.Name).To(Equal("dana"))
		Expect(secCtx.Perms).To(Equal(session.Permissions{account.RoleDeveloper}))
	})
}

func TestSimpleLogoutHandler(t *testing.T) {
	RegisterTestingT(t)
	var testDatabase *testinfra.TestDatabase

	t.Run("should drop the cached session", func(t *testing.T) {
		defer sessionsTestTeardown(t, testDatabase)
		router := sessionsTestSetup(t, &testDatabase)

		loginReq := httptest.NewRequest(http.MethodPost, "/v1/sessions",
			strings.NewReader(`{"name":"dana","password":"secret1"}`))
		status, _, resp := testinfra.ExecuteRequest(loginReq, router)
		Expect(status).To(Equal(http.StatusOK))
		token := resp.Result().Cookies()[0].Value

		logoutReq := httptest.NewRequest(http.MethodDelete, "/v1/sessions", nil)
		logoutReq.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, _, _ = testinfra.ExecuteRequest(logoutReq, router)
		Expect(status).To(Equal(http.StatusNoContent))

		_, found := session.TokenCache.Get(token)
		Expect(found).To(BeFalse())
	})
}

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should block requests without a valid token", func(t *testing.T) {
		router := gin.Default()
		router.Use(bizerror.ErrorHandling())
		router.GET("/protected", session.SimpleAuthFilter(), func(c *gin.Context) {
			c.AbortWithStatus(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(MatchJSON(`{"code":"common.unauthenticated", "message":"unauthenticated", "data":null}`))

		req = httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "stale-token"})
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should pass requests with a cached session through", func(t *testing.T) {
		defer session.TokenCache.Flush()
		secCtx := &session.Session{Token: "good-token", Identity: session.Identity{ID: 1, Name: "dana"}}
		session.TokenCache.SetDefault("good-token", secCtx)

		router := gin.Default()
		router.Use(bizerror.ErrorHandling())
		router.GET("/protected", session.SimpleAuthFilter(), func(c *gin.Context) {
			s := session.ExtractSessionFromGinContext(c)
			c.String(http.StatusOK, s.Identity.Name)
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: "good-token"})
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal("dana"))
	})
}
