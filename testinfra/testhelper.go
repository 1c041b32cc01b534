package testinfra

import (
	"net/http"
	"net/http/httptest"
	"snagline/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a session for tests, one role name per perm.
func BuildSecCtx(uid types.ID, roles ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "user_" + uid.String()},
		Perms:    roles,
	}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code, w.Body.String(), w
}
