package filter

import (
	"context"

	"github.com/s0up4200/cfclient/confluence"
)

// Filter decides whether a piece of content is selected
type Filter interface {
	// Evaluate reports a match. Runtime failures count as no match.
	Evaluate(content confluence.Content) bool
}

// CompiledFilter is a pre-compiled filter ready for concurrent evaluation
type CompiledFilter interface {
	Filter

	// Match is Evaluate with runtime failures reported as *EvaluationError
	Match(content confluence.Content) (bool, error)

	// Expression returns the source expression
	Expression() string
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	Compile(expression string) (CompiledFilter, error)
}

// CachingCompiler keeps compiled programs around for reuse
type CachingCompiler interface {
	Compiler

	// Clear removes all cached filters
	Clear()

	// Size returns the number of cached filters
	Size() int
}

// Evaluator applies a filter to a list of content, preserving order
type Evaluator interface {
	Evaluate(ctx context.Context, filter CompiledFilter, contents []confluence.Content) ([]confluence.Content, error)
}
