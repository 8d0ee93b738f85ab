package filter

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/cfclient/confluence"
)

// exprFilter implements CompiledFilter using the expr language
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// ExprCompilerOption configures an expr compiler
type ExprCompilerOption func(*exprCompiler)

// WithCache enables filter caching with the specified size
func WithCache(size int) ExprCompilerOption {
	return func(c *exprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions adds helper functions that do not depend on the content
func WithCustomFunctions(funcs map[string]any) ExprCompilerOption {
	return func(c *exprCompiler) {
		maps.Copy(c.helperFuncs, funcs)
	}
}

// NewExprCompiler creates a new expr-based filter compiler
func NewExprCompiler(opts ...ExprCompilerOption) CachingCompiler {
	c := &exprCompiler{
		helperFuncs: staticHelpers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type exprCompiler struct {
	helperFuncs map[string]any
	cache       *lruCache[CompiledFilter]
}

// Compile type-checks expression against the content environment
func (c *exprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "empty expression",
		}
	}

	if c.cache != nil {
		if cached, ok := c.cache.get(expression); ok {
			return cached, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(c.environment(confluence.Content{})),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Reason:     "failed to compile expression",
			Err:        err,
		}
	}

	f := &exprFilter{
		expression: expression,
		program:    program,
		helpers:    c.helperFuncs,
	}
	if c.cache != nil {
		c.cache.put(expression, f)
	}
	return f, nil
}

// Clear removes all cached filters
func (c *exprCompiler) Clear() {
	if c.cache != nil {
		c.cache.clear()
	}
}

// Size returns the number of cached filters
func (c *exprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.len()
	}
	return 0
}

func (c *exprCompiler) environment(content confluence.Content) map[string]any {
	return newEnvironment(c.helperFuncs, content)
}

// Evaluate reports whether content matches; runtime errors count as no match
func (f *exprFilter) Evaluate(content confluence.Content) bool {
	ok, err := f.Match(content)
	return err == nil && ok
}

// Match runs the program against content
func (f *exprFilter) Match(content confluence.Content) (bool, error) {
	result, err := expr.Run(f.program, newEnvironment(f.helpers, content))
	if err != nil {
		return false, &EvaluationError{
			Expression: f.expression,
			ContentID:  content.ID,
			Title:      content.Title,
			Err:        err,
		}
	}
	// AsBool guarantees the result type
	return result.(bool), nil
}

// Expression returns the original expression
func (f *exprFilter) Expression() string {
	return f.expression
}

// staticHelpers are the functions available regardless of the content
func staticHelpers() map[string]any {
	return map[string]any{
		"daysSince": func(t time.Time) int {
			if t.IsZero() {
				return 0
			}
			return int(time.Since(t).Hours() / 24)
		},
		"daysAgo": func(days int) time.Time {
			return time.Now().AddDate(0, 0, -days)
		},
		"monthsAgo": func(months int) time.Time {
			return time.Now().AddDate(0, -months, 0)
		},
		"parseDate": func(s string) time.Time {
			t, _ := time.Parse(time.DateOnly, s)
			return t
		},
		"iequals": strings.EqualFold,
	}
}

// newEnvironment exposes the content fields and content bound helpers
func newEnvironment(helpers map[string]any, c confluence.Content) map[string]any {
	env := make(map[string]any, len(helpers)+20)
	maps.Copy(env, helpers)

	ancestors := make([]string, len(c.Ancestors))
	for i, a := range c.Ancestors {
		ancestors[i] = a.ID
	}

	var bodyType, body string
	if c.Body != nil {
		bodyType, body = c.Body.Type.String(), c.Body.Value
	}

	var mediaType, comment string
	var fileSize int
	if c.Extensions != nil {
		mediaType = c.Extensions.MediaType
		fileSize = int(c.Extensions.FileSize)
		comment = c.Extensions.Comment
	}

	var modified time.Time
	if c.Version != nil && c.Version.When != "" {
		modified, _ = time.Parse(time.RFC3339, c.Version.When)
	}

	env["Content"] = c
	env["ID"] = c.ID
	env["Type"] = string(c.Type)
	env["Title"] = c.Title
	env["Status"] = c.Status.String()
	env["Space"] = c.SpaceKey()
	env["Version"] = c.VersionNumber()
	env["Modified"] = modified
	env["ParentID"] = c.ParentID()
	env["Ancestors"] = ancestors
	env["BodyType"] = bodyType
	env["Body"] = body
	env["MediaType"] = mediaType
	env["FileSize"] = fileSize
	env["Comment"] = comment

	env["hasAncestor"] = func(id string) bool {
		return slices.Contains(ancestors, id)
	}
	env["titleHas"] = func(substr string) bool {
		return strings.Contains(strings.ToLower(c.Title), strings.ToLower(substr))
	}
	env["isAttachment"] = func() bool {
		return c.Type == confluence.TypeAttachment
	}
	return env
}
