package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// CompiledFilter is a ready-to-run filter expression
type CompiledFilter interface {
	// Evaluate reports whether item matches. Items whose evaluation fails
	// do not match.
	Evaluate(item map[string]any) bool
	// Expression returns the source expression
	Expression() string
}

// Compiler turns expressions into CompiledFilters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// Option configures a compiler
type Option func(*compiler)

// WithCache keeps up to size compiled programs
func WithCache(size int) Option {
	return func(c *compiler) {
		if size > 0 {
			c.cache = newLRUCache[*exprFilter](size)
		}
	}
}

// WithHelpers adds or overrides helper functions
func WithHelpers(funcs map[string]any) Option {
	return func(c *compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

type compiler struct {
	helpers map[string]any
	cache   *lruCache[*exprFilter]
}

// NewCompiler creates an expr-based compiler
func NewCompiler(opts ...Option) Compiler {
	c := &compiler{helpers: helperFunctions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles an expression. Item fields are not known up front, so
// undefined identifiers are allowed and resolve to nil at run time.
func (c *compiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.helpers),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{expression: expression, program: program, helpers: c.helpers}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

func (f *exprFilter) Evaluate(item map[string]any) bool {
	env := make(map[string]any, len(item)+len(f.helpers))
	maps.Copy(env, item)
	maps.Copy(env, f.helpers)

	result, err := expr.Run(f.program, env)
	if err != nil {
		return false
	}
	matched, _ := result.(bool)
	return matched
}

func (f *exprFilter) Expression() string {
	return f.expression
}
