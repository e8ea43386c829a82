package geocode

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/motortrack/motortrack-go/internal/api"
)

// fakeGeocoder returns canned addresses keyed by latitude.
type fakeGeocoder struct {
	mu        sync.Mutex
	calls     atomic.Int32
	addresses map[float64]string
	err       error
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, lat, _ float64) (string, error) {
	f.calls.Add(1)

	if f.err != nil {
		return "", f.err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	address, ok := f.addresses[lat]
	if !ok {
		return "", ErrNoResults
	}

	return address, nil
}

// fakeUpdater records write-backs and optionally fails them.
type fakeUpdater struct {
	mu      sync.Mutex
	pushed  map[string]string
	failAll bool
}

func (f *fakeUpdater) UpdateAddress(_ context.Context, reportID, address string) error {
	if f.failAll {
		return errors.New("server unreachable")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pushed == nil {
		f.pushed = make(map[string]string)
	}

	f.pushed[reportID] = address

	return nil
}

func TestResolveAll_FillsMissingAddresses(t *testing.T) {
	geocoder := &fakeGeocoder{addresses: map[float64]string{
		1.0: "First Street",
		2.0: "Second Street",
	}}
	updater := &fakeUpdater{}
	resolver := NewResolver(geocoder, updater, 2, testLogger())

	reports := []api.TrafficReport{
		{ID: "r1", Location: api.Location{Latitude: 1.0}},
		{ID: "r2", Location: api.Location{Latitude: 2.0}, Address: Placeholder},
		{ID: "r3", Location: api.Location{Latitude: 3.0}, Address: "Known Street"},
	}

	resolved, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.Equal(t, "First Street", resolved[0].Address)
	assert.Equal(t, "Second Street", resolved[1].Address)
	assert.Equal(t, "Known Street", resolved[2].Address)

	// Input slice untouched.
	assert.Empty(t, reports[0].Address)

	// Resolved addresses were pushed back; the known one was not.
	assert.Equal(t, map[string]string{"r1": "First Street", "r2": "Second Street"}, updater.pushed)
}

func TestResolveAll_FailureYieldsFallback(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("quota exceeded")}
	resolver := NewResolver(geocoder, nil, 2, testLogger())

	reports := []api.TrafficReport{{ID: "r1", Location: api.Location{Latitude: 1.0}}}

	resolved, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	assert.Equal(t, 0, count)
	assert.Equal(t, FallbackAddress, resolved[0].Address)
}

func TestResolveAll_MemoizesAcrossPasses(t *testing.T) {
	geocoder := &fakeGeocoder{addresses: map[float64]string{1.0: "First Street"}}
	resolver := NewResolver(geocoder, nil, 2, testLogger())

	reports := []api.TrafficReport{{ID: "r1", Location: api.Location{Latitude: 1.0}}}

	_, _, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	// Second pass over the same unresolved snapshot must hit the memo.
	_, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, int32(1), geocoder.calls.Load())
}

func TestResolveAll_FallbackNotMemoized(t *testing.T) {
	geocoder := &fakeGeocoder{err: errors.New("transient")}
	resolver := NewResolver(geocoder, nil, 1, testLogger())

	reports := []api.TrafficReport{{ID: "r1", Location: api.Location{Latitude: 1.0}}}

	_, _, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	// After the failure clears, the next pass retries the lookup.
	geocoder.err = nil
	geocoder.addresses = map[float64]string{1.0: "First Street"}

	resolved, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	assert.Equal(t, 1, count)
	assert.Equal(t, "First Street", resolved[0].Address)
	assert.Equal(t, int32(2), geocoder.calls.Load())
}

func TestResolveAll_PushFailureIgnored(t *testing.T) {
	geocoder := &fakeGeocoder{addresses: map[float64]string{1.0: "First Street"}}
	updater := &fakeUpdater{failAll: true}
	resolver := NewResolver(geocoder, updater, 2, testLogger())

	reports := []api.TrafficReport{{ID: "r1", Location: api.Location{Latitude: 1.0}}}

	resolved, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	// The snapshot keeps the address even though write-back failed.
	assert.Equal(t, 1, count)
	assert.Equal(t, "First Street", resolved[0].Address)
}

func TestResolveAll_BoundedConcurrency(t *testing.T) {
	const workers = 2

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	geocoder := geocoderFunc(func(_ context.Context, lat, _ float64) (string, error) {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		defer func() {
			mu.Lock()
			active--
			mu.Unlock()
		}()

		return fmt.Sprintf("street %v", lat), nil
	})

	resolver := NewResolver(geocoder, nil, workers, testLogger())

	reports := make([]api.TrafficReport, 10)
	for i := range reports {
		reports[i] = api.TrafficReport{ID: fmt.Sprintf("r%d", i), Location: api.Location{Latitude: float64(i)}}
	}

	_, count, err := resolver.ResolveAll(context.Background(), reports)
	require.NoError(t, err)

	assert.Equal(t, 10, count)
	assert.LessOrEqual(t, maxSeen, workers)
}

type geocoderFunc func(ctx context.Context, lat, lng float64) (string, error)

func (f geocoderFunc) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	return f(ctx, lat, lng)
}

func TestNeedsResolution(t *testing.T) {
	assert.True(t, NeedsResolution(""))
	assert.True(t, NeedsResolution(Placeholder))
	assert.True(t, NeedsResolution(FallbackAddress))
	assert.False(t, NeedsResolution("Known Street"))
}
