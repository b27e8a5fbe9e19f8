package converter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxbrian/geosite2abp/internal/source"
)

// syncFetcher guards memFetcher for concurrent roots.
type syncFetcher struct {
	mu sync.Mutex
	*memFetcher
}

func (s *syncFetcher) Fetch(ctx context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memFetcher.Fetch(ctx, url)
}

func TestResolveAllKeepsOrder(t *testing.T) {
	f := &syncFetcher{memFetcher: newMemFetcher(map[string]string{
		"a":      "a.com\ninclude:shared\n",
		"b":      "b.com\ninclude:shared\n",
		"c":      "full:c.com\n",
		"shared": "s.com\n",
	})}
	catalog := source.NewCatalog(nil, memTemplate, memTemplate)

	var mu sync.Mutex
	var finished []string
	outcomes := ResolveAll(context.Background(), []string{"a", "b", "c"}, catalog, f, Options{}, 3, func(o Outcome) {
		mu.Lock()
		finished = append(finished, o.Item)
		mu.Unlock()
	})

	require.Len(t, outcomes, 3)
	assert.Equal(t, "a", outcomes[0].Item)
	assert.Equal(t, []string{"||a.com", "", "||s.com"}, outcomes[0].Lines)
	assert.Equal(t, "b", outcomes[1].Item)
	assert.Equal(t, []string{"||b.com", "", "||s.com"}, outcomes[1].Lines)
	assert.Equal(t, []string{"|c.com"}, outcomes[2].Lines)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, finished)

	// visited sets are per root, so the shared list is fetched once per root
	assert.Equal(t, 2, f.count("shared"))
}

func TestResolveAllIsolatesFaults(t *testing.T) {
	catalog := source.NewCatalog(nil, memTemplate, memTemplate)

	outcomes := ResolveAll(context.Background(), []string{"x", "y"}, catalog, panicFetcher{}, Options{}, 0, nil)

	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.Error(t, o.Err)
		assert.Empty(t, o.Lines)
		assert.Equal(t, "mem://lists/"+o.Item, o.RootURL)
	}
}

func TestOutcomeComplete(t *testing.T) {
	assert.True(t, Outcome{}.Complete())
	assert.False(t, Outcome{Result: Result{Failures: 1}}.Complete())
	assert.False(t, Outcome{Err: errors.New("fault")}.Complete())
}
