// Package filter selects Confluence content with expr-lang expressions.
//
// Expressions see the fields of one piece of content (ID, Type, Title,
// Status, Space, Version, Modified, ParentID, Ancestors, BodyType, Body,
// MediaType, FileSize, Comment) plus helpers such as hasAncestor, titleHas,
// isAttachment, daysAgo and daysSince:
//
//	Type == "page" and Space == "DOCS" and Modified < daysAgo(90)
//	isAttachment() and MediaType == "application/pdf" and FileSize > 1048576
package filter

var defaultCompiler = NewExprCompiler(WithCache(100))

// CompileFilter compiles expression with a shared caching compiler
func CompileFilter(expression string) (CompiledFilter, error) {
	return defaultCompiler.Compile(expression)
}
