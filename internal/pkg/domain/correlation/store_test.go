package correlation

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelateIsVisibleInBothDirections(t *testing.T) {
	store := NewStore()
	store.Correlate("abc123", "dev1", []string{"1", "2"})

	networkID, ok := store.LookupNetworkID("abc123")
	require.True(t, ok)
	assert.Equal(t, "dev1", networkID)

	record, ok := store.LookupPlatformID("dev1")
	require.True(t, ok)
	assert.Equal(t, "abc123", record.PlatformID)
	assert.Equal(t, []string{"1", "2"}, record.TemplateIDs)
}

func TestCorrelateIsIdempotent(t *testing.T) {
	once := NewStore()
	once.Correlate("abc123", "dev1", []string{"1"})

	twice := NewStore()
	twice.Correlate("abc123", "dev1", []string{"1"})
	twice.Correlate("abc123", "dev1", []string{"1"})

	assert.ElementsMatch(t, once.Records(), twice.Records())
	assert.Equal(t, 1, twice.Len())
}

func TestCorrelateOverwritesPreviousPairs(t *testing.T) {
	store := NewStore()
	store.Correlate("abc123", "dev1", nil)
	store.Correlate("abc123", "dev2", nil)

	_, ok := store.LookupPlatformID("dev1")
	assert.False(t, ok, "stale network id must be dropped")

	networkID, _ := store.LookupNetworkID("abc123")
	assert.Equal(t, "dev2", networkID)

	store.Correlate("def456", "dev2", nil)

	_, ok = store.LookupNetworkID("abc123")
	assert.False(t, ok, "stale platform id must be dropped")

	record, _ := store.LookupPlatformID("dev2")
	assert.Equal(t, "def456", record.PlatformID)
	assert.Equal(t, 1, store.Len())
}

func TestDecorrelateRemovesBothDirections(t *testing.T) {
	store := NewStore()
	store.Correlate("abc123", "dev1", []string{"1"})
	store.Decorrelate("abc123", "dev1")

	_, ok := store.LookupNetworkID("abc123")
	assert.False(t, ok)
	_, ok = store.LookupPlatformID("dev1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestDecorrelateIgnoresAbsentKeys(t *testing.T) {
	store := NewStore()
	store.Correlate("abc123", "dev1", nil)

	store.Decorrelate("unknown", "unknown")
	store.Decorrelate("", "")

	assert.Equal(t, 1, store.Len())
}

func TestLookupReturnsCopies(t *testing.T) {
	store := NewStore()
	templates := []string{"1"}
	store.Correlate("abc123", "dev1", templates)
	templates[0] = "changed"

	record, _ := store.LookupPlatformID("dev1")
	record.TemplateIDs[0] = "mutated"

	again, _ := store.LookupPlatformID("dev1")
	assert.Equal(t, []string{"1"}, again.TemplateIDs)
}

func TestConcurrentCorrelationsKeepIndicesConsistent(t *testing.T) {
	store := NewStore()
	wg := sync.WaitGroup{}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			platformID := fmt.Sprintf("p%d", i%10)
			networkID := fmt.Sprintf("n%d", i%7)
			store.Correlate(platformID, networkID, nil)
			if i%3 == 0 {
				store.Decorrelate(platformID, networkID)
			}
		}(i)
	}
	wg.Wait()

	for _, record := range store.Records() {
		networkID, ok := store.LookupNetworkID(record.PlatformID)
		require.True(t, ok)
		assert.Equal(t, record.NetworkID, networkID)

		back, ok := store.LookupPlatformID(record.NetworkID)
		require.True(t, ok)
		assert.Equal(t, record.PlatformID, back.PlatformID)
	}
}
