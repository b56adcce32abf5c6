package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"chanboard/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, identity)
	})
	r.DELETE("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newEngine()

	w := do(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = do(r, http.MethodGet, "/me", map[string]string{HeaderUserID: "abc", HeaderUsername: "alice"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", map[string]string{HeaderUserID: "7", HeaderUsername: "alice"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"UserID":7,"Username":"alice","IsAdmin":false}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

func TestAdminRequired(t *testing.T) {
	r := newEngine()
	user := map[string]string{HeaderUserID: "7", HeaderUsername: "alice"}

	w := do(r, http.MethodDelete, "/admin", user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	user[HeaderIsAdmin] = "true" // only "1" grants admin
	w = do(r, http.MethodDelete, "/admin", user)
	assert.Equal(t, http.StatusForbidden, w.Code)

	user[HeaderIsAdmin] = "1"
	w = do(r, http.MethodDelete, "/admin", user)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newEngine()
	w := do(r, http.MethodGet, "/me", map[string]string{HeaderRequestID: "req-123"})
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
}

func TestCurrentIdentityMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := CurrentIdentity(c)
	assert.False(t, ok)

	c.Set(IdentityKey, models.Identity{UserID: 1})
	id, ok := CurrentIdentity(c)
	assert.True(t, ok)
	assert.Equal(t, uint(1), id.UserID)
}
