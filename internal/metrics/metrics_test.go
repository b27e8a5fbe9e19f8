package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterTwice(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestRulesCounter(t *testing.T) {
	before := testutil.ToFloat64(Rules.WithLabelValues("full"))
	Rules.WithLabelValues("full").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Rules.WithLabelValues("full")))
}
