package filter

import "github.com/s0up4200/transmission-rest/status"

// Filter decides whether a slot belongs in a filtered listing
type Filter interface {
	// Evaluate checks if a slot matches the filter criteria
	Evaluate(slot status.Slot) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler provides caching for compiled filters
type CachingCompiler interface {
	Compiler

	// Size returns the number of cached filters
	Size() int
}
