package bvexpr

import "sync/atomic"

// Process-wide rewrite counters, incremented by the rules of the
// constant-folding layer. exprOpts counts a rule that returned a term
// distinct from the naive node; constOpts those that collapsed to a
// constant. The reassociation rules of Add, and those of Sub over two
// non-constant operands, return new terms without being counted.
// Builders only ever increment; concurrent clients are fine.
var (
	exprOptsCounter  atomic.Uint64
	constOptsCounter atomic.Uint64
)

func ExprOpts() uint64 {
	return exprOptsCounter.Load()
}

func ConstOpts() uint64 {
	return constOptsCounter.Load()
}
