package metrics

import (
	"errors"
	"testing"

	custom_error "fieldstock/pkg/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveCountsByOutcome(t *testing.T) {
	l := NewLedger(prometheus.NewRegistry())

	l.Observe("approve", nil)
	l.Observe("approve", &custom_error.InsufficientStockError{})
	l.Observe("approve", &custom_error.InsufficientStockError{})

	assert.Equal(t, 1.0, testutil.ToFloat64(l.operations.WithLabelValues("approve", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(l.operations.WithLabelValues("approve", "insufficient_stock")))
}

func TestNilLedgerIsNoop(t *testing.T) {
	var l *Ledger
	assert.NotPanics(t, func() { l.Observe("add_stock", nil) })
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "conflict", Outcome(&custom_error.ConflictError{}))
	assert.Equal(t, "forbidden", Outcome(&custom_error.BatchMemberError{Err: &custom_error.ForbiddenError{}}))
	assert.Equal(t, "error", Outcome(errors.New("db down")))
}
