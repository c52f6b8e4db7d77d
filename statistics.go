package parquets

import (
	"github.com/dobesv/parquets/format"
)

// columnStatistics accumulates the per-row-group statistics of one leaf
// column: the null count, the exact distinct count, and the minimum and
// maximum values observed.
type columnStatistics struct {
	kind      Kind
	nullCount int64
	distinct  map[string]struct{}
	minValue  Value
	maxValue  Value
}

func makeColumnStatistics(col *Column) columnStatistics {
	return columnStatistics{kind: col.typ.Kind()}
}

func (st *columnStatistics) reset() {
	st.nullCount = 0
	st.distinct = nil
	st.minValue = Value{}
	st.maxValue = Value{}
}

func (st *columnStatistics) observe(v Value) {
	if st.distinct == nil {
		st.distinct = make(map[string]struct{})
	}
	st.distinct[string(plainValue(v, st.kind))] = struct{}{}

	if st.minValue.IsNull() || lessValue(v, st.minValue, st.kind) {
		st.minValue = v
	}
	if st.maxValue.IsNull() || lessValue(st.maxValue, v, st.kind) {
		st.maxValue = v
	}
}

func (st *columnStatistics) observeNull() {
	st.nullCount++
}

// statistics serializes the accumulated state in the representation stored
// in column chunk metadata. The bounds are encoded like PLAIN values, so
// BYTE_ARRAY bounds carry their 4-byte length prefix.
func (st *columnStatistics) statistics() format.Statistics {
	stats := format.Statistics{
		NullCount:     st.nullCount,
		DistinctCount: int64(len(st.distinct)),
	}
	if !st.minValue.IsNull() {
		stats.MinValue = plainValue(st.minValue, st.kind)
		stats.Min = stats.MinValue
	}
	if !st.maxValue.IsNull() {
		stats.MaxValue = plainValue(st.maxValue, st.kind)
		stats.Max = stats.MaxValue
	}
	return stats
}
