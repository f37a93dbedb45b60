package coordinator

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobgo-agent/internal/api"
	"jobgo-agent/internal/logger"
)

// fakeBackend enforces (platform, slug) uniqueness like the real backend and
// keeps the cart as a set of ids.
type fakeBackend struct {
	mu        sync.Mutex
	companies []api.Company
	cart      map[string]bool
	nextID    int

	createDelay time.Duration
	createErr   error // forced create failure
	listErr     error
	cartErr     error

	creates  int
	lists    int
	cartAdds []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{cart: map[string]bool{}, nextID: 1}
}

func (f *fakeBackend) CreateCompany(ctx context.Context, nc api.NewCompany) (api.Company, error) {
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return api.Company{}, f.createErr
	}
	for _, c := range f.companies {
		if c.Platform == nc.Platform && c.Slug == nc.Slug {
			return api.Company{}, &api.Error{Status: http.StatusInternalServerError, Message: "UNIQUE constraint failed: companies.platform, companies.slug"}
		}
	}
	c := api.Company{ID: strconv.Itoa(f.nextID), Name: nc.Name, Platform: nc.Platform, Slug: nc.Slug}
	f.nextID++
	f.companies = append(f.companies, c)
	return c, nil
}

func (f *fakeBackend) ListCompanies(ctx context.Context) ([]api.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]api.Company, len(f.companies))
	copy(out, f.companies)
	for i := range out {
		out[i].InCart = f.cart[out[i].ID]
	}
	return out, nil
}

func (f *fakeBackend) AddToCart(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cartErr != nil {
		return f.cartErr
	}
	f.cartAdds = append(f.cartAdds, id)
	f.cart[id] = true
	return nil
}

func (f *fakeBackend) cartSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cart)
}

func TestAddCompany_CreateSucceeds(t *testing.T) {
	be := newFakeBackend()
	c := New(be, logger.Discard())

	got, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	assert.True(t, got.InCart)
	assert.Equal(t, 0, be.lists, "no lookup when create succeeds")
	assert.Equal(t, []string{"1"}, be.cartAdds)
}

func TestAddCompany_ConflictFindsExisting(t *testing.T) {
	be := newFakeBackend()
	be.companies = []api.Company{
		{ID: "3", Name: "Acme", Platform: "lever", Slug: "acme"},
		{ID: "7", Name: "Acme", Platform: "greenhouse", Slug: "acme"},
	}
	be.createErr = &api.Error{Status: http.StatusConflict, Message: "already exists"}
	c := New(be, logger.Discard())

	got, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
	require.NoError(t, err)
	assert.Equal(t, "7", got.ID, "matches on platform as well as slug")
	assert.Equal(t, []string{"7"}, be.cartAdds)
}

func TestAddCompany_AnyCreateFailureTriggersLookup(t *testing.T) {
	be := newFakeBackend()
	be.companies = []api.Company{{ID: "9", Platform: "ashby", Slug: "linear"}}
	be.createErr = &api.Error{Status: http.StatusBadRequest, Message: "invalid JSON"}
	c := New(be, logger.Discard())

	got, err := c.AddCompany(context.Background(), "Linear", "ashby", "linear")
	require.NoError(t, err)
	assert.Equal(t, "9", got.ID)
}

func TestAddCompany_NotFoundIsCoordinationError(t *testing.T) {
	be := newFakeBackend()
	createErr := &api.Error{Status: http.StatusInternalServerError, Message: "db locked"}
	be.createErr = createErr
	c := New(be, logger.Discard())

	_, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
	require.Error(t, err)

	var coordErr *CoordinationError
	require.True(t, errors.As(err, &coordErr))
	assert.Equal(t, "could not create or find company", err.Error())
	assert.ErrorIs(t, err, createErr)
	assert.Empty(t, be.cartAdds, "no cart add without a company id")
}

func TestAddCompany_ListFailure(t *testing.T) {
	be := newFakeBackend()
	be.createErr = &api.Error{Status: http.StatusConflict, Message: "exists"}
	be.listErr = &api.Error{Message: "GET /companies: connection refused"}
	c := New(be, logger.Discard())

	_, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
	require.Error(t, err)
	assert.True(t, api.IsTransport(err))
}

func TestAddCompany_CartFailure(t *testing.T) {
	be := newFakeBackend()
	be.cartErr = &api.Error{Status: http.StatusInternalServerError, Message: "cart unavailable"}
	c := New(be, logger.Discard())

	_, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart unavailable")
}

func TestAddCompany_RejectsEmptyFields(t *testing.T) {
	c := New(newFakeBackend(), logger.Discard())
	_, err := c.AddCompany(context.Background(), "Acme", "greenhouse", " ")
	assert.ErrorIs(t, err, ErrInvalidCompany)
}

func TestAddCompany_TwiceConvergesOnOneMembership(t *testing.T) {
	be := newFakeBackend()
	c := New(be, logger.Discard())
	ctx := context.Background()

	first, err := c.AddCompany(ctx, "Acme", "greenhouse", "acme")
	require.NoError(t, err)

	// second call hits the uniqueness conflict and the lookup path
	second, err := c.AddCompany(ctx, "Acme", "greenhouse", "acme")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, be.cartSize())
	assert.Equal(t, 2, be.creates)
	assert.Equal(t, 1, be.lists)
}

func TestAddCompany_ConcurrentCallsShareOneRun(t *testing.T) {
	be := newFakeBackend()
	be.createDelay = 50 * time.Millisecond
	c := New(be, logger.Discard())

	const n = 5
	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			co, err := c.AddCompany(context.Background(), "Acme", "greenhouse", "acme")
			ids[i], errs[i] = co.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, be.cartSize())

	be.mu.Lock()
	defer be.mu.Unlock()
	assert.Len(t, be.companies, 1)
}
