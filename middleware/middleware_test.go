package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniketsuryawanshi1/recipe-hub-api/audit"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
	"github.com/aniketsuryawanshi1/recipe-hub-api/policy"
	"github.com/aniketsuryawanshi1/recipe-hub-api/util"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	gin.SetMode(gin.TestMode)
	viper.Set("auth.jwtSecret", "test-secret")
	viper.Set("auth.tokenTTL", "1h")
	m.Run()
}

// fakeAudit records entries in memory.
type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (f *fakeAudit) Record(ctx context.Context, entry audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAudit) QueryEntries(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]audit.Entry(nil), f.entries...), nil
}

func (f *fakeAudit) waitForEntries(t *testing.T, n int) []audit.Entry {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		count := len(f.entries)
		f.mu.Unlock()
		if count >= n {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	require.GreaterOrEqual(t, len(f.entries), n)
	return append([]audit.Entry(nil), f.entries...)
}

// fakeThrottle denies after a fixed number of requests, in scope for a
// single role.
type fakeThrottle struct {
	scope   string
	limit   int
	inScope func(*model.User) bool
	count   int
}

func (f *fakeThrottle) Scope() string { return f.scope }
func (f *fakeThrottle) Limit() int    { return f.limit }

func (f *fakeThrottle) AllowRequest(ctx context.Context, principal *model.User, clientIP string) bool {
	if !f.inScope(principal) {
		return true
	}
	f.count++
	return f.count <= f.limit
}

func principalEcho() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := util.PrincipalFromContext(c)
		if principal == nil {
			c.JSON(http.StatusOK, gin.H{"principal": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal.ID, "role": string(principal.Role)})
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.GET("/whoami", Auth(), principalEcho())

	t.Run("valid token populates principal", func(t *testing.T) {
		user := &model.User{ID: "u1", Username: "alice", Role: model.RoleSeller, IsActive: true}
		token, err := IssueToken(user)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"principal":"u1"`)
		assert.Contains(t, w.Body.String(), `"role":"seller"`)
	})

	t.Run("absent token leaves request anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"principal":null`)
	})

	t.Run("garbage token leaves request anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"principal":null`)
	})
}

func TestAuthorizeMiddleware(t *testing.T) {
	newRouter := func(auditSvc audit.Service, principal *model.User, policies ...policy.Policy) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if principal != nil {
				c.Set(util.PrincipalKey, principal)
			}
		})
		router.POST("/protected", Authorize(auditSvc, policies...), func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		return router
	}

	t.Run("anonymous denial is 401", func(t *testing.T) {
		fa := &fakeAudit{}
		router := newRouter(fa, nil, policy.Authenticated{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Authentication required.")

		entries := fa.waitForEntries(t, 1)
		assert.Equal(t, "Authenticated", entries[0].Policy)
		assert.False(t, entries[0].AccessGranted)
	})

	t.Run("authenticated denial is 403", func(t *testing.T) {
		fa := &fakeAudit{}
		customer := &model.User{ID: "c1", Role: model.RoleCustomer, IsActive: true}
		router := newRouter(fa, customer, policy.SellerOnly{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/protected", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You must be a seller to access this resource.")
	})

	t.Run("allowed request reaches handler", func(t *testing.T) {
		fa := &fakeAudit{}
		seller := &model.User{ID: "s1", Role: model.RoleSeller, IsActive: true}
		router := newRouter(fa, seller, policy.Authenticated{}, policy.SellerOnly{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/protected", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, fa.entries)
	})
}

func TestThrottleMiddleware(t *testing.T) {
	customerScope := &fakeThrottle{
		scope: "customer", limit: 2,
		inScope: func(u *model.User) bool { return u.IsCustomer() },
	}
	sellerScope := &fakeThrottle{
		scope: "seller", limit: 100,
		inScope: func(u *model.User) bool { return u.IsSeller() },
	}

	customer := &model.User{ID: "c1", Role: model.RoleCustomer, IsActive: true}
	router := gin.New()
	router.Use(func(c *gin.Context) { c.Set(util.PrincipalKey, customer) })
	router.GET("/limited", Throttle(customerScope, sellerScope), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// The request is denied as soon as any applicable scope denies, and
	// the response names the scope that tripped.
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "customer", w.Header().Get("X-RateLimit-Scope"))
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// The seller scope never counted the customer.
	assert.Equal(t, 0, sellerScope.count)
}
