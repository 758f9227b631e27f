package reference

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/draftdesk/draftdesk/testing"
)

type stubSource struct {
	mu    sync.Mutex
	calls map[string]int
}

func newStubSource() *stubSource {
	return &stubSource{calls: make(map[string]int)}
}

func (s *stubSource) Get(ctx context.Context, path string, dest any) error {
	s.mu.Lock()
	s.calls[path]++
	s.mu.Unlock()

	var raw string
	switch {
	case strings.HasPrefix(path, "reference/accounts"):
		raw = `[{"id":1,"code":"1001","name":"Cash","type":"ASSET","active":true}]`
	case strings.HasPrefix(path, "reference/products"):
		raw = `[{"id":9,"sku":"WID-1","name":"Widget","unit_price":100,"tax_rate_percent":18,"active":true}]`
	case strings.HasPrefix(path, "reference/parties"):
		raw = `[{"id":42,"name":"Acme Traders","kind":"CUSTOMER"}]`
	default:
		return fmt.Errorf("unexpected path %s", path)
	}
	return json.Unmarshal([]byte(raw), dest)
}

func (s *stubSource) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func newTestService(t *testing.T) (*Service, *stubSource, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	source := newStubSource()
	return NewService(source, NewCache(client, time.Minute)), source, mr
}

func TestAccountsReadThrough(t *testing.T) {
	svc, source, _ := newTestService(t)

	accounts, err := svc.Accounts(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Cash", accounts[0].Name)

	// Second read is served from the cache.
	accounts, err = svc.Accounts(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, 1, source.total())
}

func TestTenantsAreCachedSeparately(t *testing.T) {
	svc, source, _ := newTestService(t)

	_, err := svc.Accounts(context.Background(), 7)
	require.NoError(t, err)
	_, err = svc.Accounts(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, 2, source.total())
}

func TestRefreshInvalidatesCache(t *testing.T) {
	svc, source, _ := newTestService(t)

	_, err := svc.Products(context.Background(), 7)
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	_, err = svc.Products(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, source.total())
}

func TestWarmupFetchesAllCollections(t *testing.T) {
	svc, source, _ := newTestService(t)

	require.NoError(t, svc.Warmup(context.Background(), []int64{7, 8}))
	assert.Equal(t, 6, source.total())

	// Everything is already warm: no further backend calls.
	_, err := svc.Parties(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, 6, source.total())
}

func TestEntriesExpireAfterTTL(t *testing.T) {
	svc, source, mr := newTestService(t)

	_, err := svc.Accounts(context.Background(), 7)
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, err = svc.Accounts(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, source.total())
}

func TestNilCacheDegradesToSource(t *testing.T) {
	source := newStubSource()
	svc := NewService(source, nil)

	parties, err := svc.Parties(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, parties, 1)
	assert.Equal(t, "Acme Traders", parties[0].Name)

	_, err = svc.Parties(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, source.total())
}
