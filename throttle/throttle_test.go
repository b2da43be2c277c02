package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniketsuryawanshi1/recipe-hub-api/db"
	logger "github.com/aniketsuryawanshi1/recipe-hub-api/logging"
	"github.com/aniketsuryawanshi1/recipe-hub-api/model"
)

func TestMain(m *testing.M) {
	logger.InitTestLogger()
	m.Run()
}

func newTestLimiter(t *testing.T) (*db.SlidingWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return db.NewSlidingWindowLimiter(client), mr
}

func customer(id string) *model.User {
	return &model.User{ID: id, Role: model.RoleCustomer, IsActive: true}
}

func seller(id string) *model.User {
	return &model.User{ID: id, Role: model.RoleSeller, IsActive: true}
}

func TestKeyScoping(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewCustomerThrottle(limiter, 5, time.Minute)

	assert.Equal(t, "throttle_customer_c1", th.Key(customer("c1")))
	assert.Equal(t, "", th.Key(seller("s1")))
	assert.Equal(t, "", th.Key(nil))

	inactive := &model.User{ID: "c2", Role: model.RoleCustomer, IsActive: false}
	assert.Equal(t, "", th.Key(inactive))
}

func TestInScopePrincipalIsLimited(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewCustomerThrottle(limiter, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.True(t, th.AllowRequest(ctx, customer("c1"), "1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, th.AllowRequest(ctx, customer("c1"), "1.2.3.4"))
}

func TestOutOfScopePrincipalNeverLimited(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewCustomerThrottle(limiter, 2, time.Minute)
	ctx := context.Background()

	// A seller is outside the customer scope: allowed far past the limit,
	// and nothing is counted.
	for i := 0; i < 20; i++ {
		assert.True(t, th.AllowRequest(ctx, seller("s1"), "1.2.3.4"))
	}
	assert.True(t, th.AllowRequest(ctx, nil, "1.2.3.4"))
}

func TestScopesCountIndependently(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewCustomerThrottle(limiter, 2, time.Minute)
	ctx := context.Background()

	assert.True(t, th.AllowRequest(ctx, customer("c1"), ""))
	assert.True(t, th.AllowRequest(ctx, customer("c1"), ""))
	assert.False(t, th.AllowRequest(ctx, customer("c1"), ""))

	// A different principal has its own bucket.
	assert.True(t, th.AllowRequest(ctx, customer("c2"), ""))
}

func TestAdminScopeUsesStaffFlags(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewAdminThrottle(limiter, 1, time.Minute)
	ctx := context.Background()

	staff := &model.User{ID: "a1", Role: model.RoleSeller, IsActive: true, IsStaff: true}
	assert.Equal(t, "throttle_admin_a1", th.Key(staff))
	assert.True(t, th.AllowRequest(ctx, staff, ""))
	assert.False(t, th.AllowRequest(ctx, staff, ""))

	assert.Equal(t, "", th.Key(seller("s1")))
}

func TestBackendErrorAllows(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	th := NewSellerThrottle(limiter, 1, time.Minute)
	ctx := context.Background()

	mr.Close()
	assert.True(t, th.AllowRequest(ctx, seller("s1"), ""))
}

func TestAnonThrottle(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	th := NewAnonThrottle(limiter, 2, time.Minute)
	ctx := context.Background()

	t.Run("anonymous requests keyed by IP", func(t *testing.T) {
		assert.True(t, th.AllowRequest(ctx, nil, "9.9.9.9"))
		assert.True(t, th.AllowRequest(ctx, nil, "9.9.9.9"))
		assert.False(t, th.AllowRequest(ctx, nil, "9.9.9.9"))
		assert.True(t, th.AllowRequest(ctx, nil, "8.8.8.8"))
	})

	t.Run("authenticated principals out of scope", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			assert.True(t, th.AllowRequest(ctx, customer("c1"), "9.9.9.9"))
		}
	})
}

func TestWindowSlides(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	th := NewCustomerThrottle(limiter, 1, time.Minute)
	ctx := context.Background()

	require.True(t, th.AllowRequest(ctx, customer("c1"), ""))
	require.False(t, th.AllowRequest(ctx, customer("c1"), ""))

	mr.FastForward(2 * time.Minute)
	assert.True(t, th.AllowRequest(ctx, customer("c1"), ""))
}
