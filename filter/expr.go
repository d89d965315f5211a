package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/transmission-rest/status"
)

// DefaultCacheSize is the number of compiled expressions kept by the HTTP service.
const DefaultCacheSize = 64

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	extra      map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache(size)
		}
	}
}

// WithCustomFunctions adds custom helper functions
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.customFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		customFuncs: make(map[string]any),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// exprCompiler implements CachingCompiler for expr-based filters
type exprCompiler struct {
	customFuncs map[string]any
	cache       *lruCache
}

// Compile compiles an expression into an executable filter
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Compile against a sample environment so unknown names fail early.
	program, err := expr.Compile(expression,
		expr.Env(createEnvironment(status.Slot{}, c.customFuncs)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	filter := &exprFilter{
		expression: expression,
		program:    program,
		extra:      c.customFuncs,
	}

	if c.cache != nil {
		c.cache.Put(expression, filter)
	}

	return filter, nil
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Size()
	}
	return 0
}

// Evaluate evaluates the filter against a slot. Slots that make the
// expression fail at runtime do not match.
func (f *exprFilter) Evaluate(slot status.Slot) bool {
	result, err := expr.Run(f.program, createEnvironment(slot, f.extra))
	if err != nil {
		return false
	}

	matched, ok := result.(bool)
	return ok && matched
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// Compile compiles expression without caching.
func Compile(expression string) (CompiledFilter, error) {
	return NewExprCompiler().Compile(expression)
}
