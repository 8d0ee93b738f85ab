package confluence

import (
	"maps"
	"slices"
	"strings"
)

// Expansion is an immutable set of dotted property paths sent as the
// "expand" query parameter. The zero value is an empty expansion.
type Expansion struct {
	paths map[string]struct{}
}

// Paths returns the expanded paths in sorted order
func (e Expansion) Paths() []string {
	out := make([]string, 0, len(e.paths))
	for p := range e.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Len returns the number of distinct paths
func (e Expansion) Len() int {
	return len(e.paths)
}

// IsEmpty reports whether no path was added
func (e Expansion) IsEmpty() bool {
	return len(e.paths) == 0
}

// Has reports whether path is part of the expansion
func (e Expansion) Has(path string) bool {
	_, ok := e.paths[path]
	return ok
}

// String joins the paths with commas, the format the server expects
func (e Expansion) String() string {
	return strings.Join(e.Paths(), ",")
}

// Union returns a new expansion holding the paths of both e and other
func (e Expansion) Union(other Expansion) Expansion {
	out := make(map[string]struct{}, len(e.paths)+len(other.paths))
	maps.Copy(out, e.paths)
	maps.Copy(out, other.paths)
	return Expansion{paths: out}
}

// ExpandBuilder collects expansion paths from namespace scoped sub-builders.
// It is the only place where expansion paths are assembled.
type ExpandBuilder struct {
	paths map[string]struct{}
}

// NewExpandBuilder creates an empty builder
func NewExpandBuilder() *ExpandBuilder {
	return &ExpandBuilder{paths: make(map[string]struct{})}
}

func (b *ExpandBuilder) add(path string) *ExpandBuilder {
	if b.paths == nil {
		b.paths = make(map[string]struct{})
	}
	b.paths[path] = struct{}{}
	return b
}

func (b *ExpandBuilder) addAll(namespace string, props properties) *ExpandBuilder {
	for _, p := range props {
		b.add(namespace + "." + p)
	}
	return b
}

// ChildTypes expands childTypes.<type>
func (b *ExpandBuilder) ChildTypes(c ChildTypes) *ExpandBuilder {
	return b.addAll("childTypes", c.props)
}

// Container expands the containing space or page
func (b *ExpandBuilder) Container() *ExpandBuilder {
	return b.add("container")
}

// Metadata expands metadata.<property>
func (b *ExpandBuilder) Metadata(m Metadata) *ExpandBuilder {
	return b.addAll("metadata", m.props)
}

// Operations expands the operations the current user may perform
func (b *ExpandBuilder) Operations() *ExpandBuilder {
	return b.add("operations")
}

// Children expands children.<type>
func (b *ExpandBuilder) Children(c Children) *ExpandBuilder {
	return b.addAll("children", c.props)
}

// Restrictions expands restrictions.<operation>.restrictions.<subject>
func (b *ExpandBuilder) Restrictions(r Restrictions) *ExpandBuilder {
	return b.addAll("restrictions", r.props)
}

// History expands history.<property>
func (b *ExpandBuilder) History(h History) *ExpandBuilder {
	return b.addAll("history", h.props)
}

// Ancestors expands the ancestor chain
func (b *ExpandBuilder) Ancestors() *ExpandBuilder {
	return b.add("ancestors")
}

// Body expands body.<bodyType>.<property>
func (b *ExpandBuilder) Body(bt BodyType, f BodyFormat) *ExpandBuilder {
	if bt.IsZero() {
		return b
	}
	return b.addAll("body."+bt.id, f.props)
}

// Version expands the version object
func (b *ExpandBuilder) Version() *ExpandBuilder {
	return b.add("version")
}

// Descendants expands descendants.<type>
func (b *ExpandBuilder) Descendants(d Descendants) *ExpandBuilder {
	return b.addAll("descendants", d.props)
}

// Space expands the owning space
func (b *ExpandBuilder) Space() *ExpandBuilder {
	return b.add("space")
}

// Build freezes the collected paths. The builder can keep being used
// without affecting the returned expansion.
func (b *ExpandBuilder) Build() Expansion {
	return Expansion{paths: maps.Clone(b.paths)}
}

// properties is an append-only list of leaf names. with never mutates the
// receiver so sub-builder values can be shared and extended independently.
type properties []string

func (p properties) with(name string) properties {
	out := make(properties, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// ChildTypes selects leaves of the childTypes namespace
type ChildTypes struct{ props properties }

func (c ChildTypes) All() ChildTypes        { return ChildTypes{c.props.with("all")} }
func (c ChildTypes) Attachment() ChildTypes { return ChildTypes{c.props.with("attachment")} }
func (c ChildTypes) Comment() ChildTypes    { return ChildTypes{c.props.with("comment")} }
func (c ChildTypes) Page() ChildTypes       { return ChildTypes{c.props.with("page")} }

// Metadata selects leaves of the metadata namespace
type Metadata struct{ props properties }

func (m Metadata) CurrentUser() Metadata { return Metadata{m.props.with("currentuser")} }
func (m Metadata) Properties() Metadata  { return Metadata{m.props.with("properties")} }
func (m Metadata) Labels() Metadata      { return Metadata{m.props.with("labels")} }
func (m Metadata) Likes() Metadata       { return Metadata{m.props.with("likes")} }

// Children selects leaves of the children namespace
type Children struct{ props properties }

func (c Children) Page() Children       { return Children{c.props.with("page")} }
func (c Children) Comment() Children    { return Children{c.props.with("comment")} }
func (c Children) Attachment() Children { return Children{c.props.with("attachment")} }

// Restrictions selects leaves of the restrictions namespace
type Restrictions struct{ props properties }

func (r Restrictions) ReadUser() Restrictions {
	return Restrictions{r.props.with("read.restrictions.user")}
}

func (r Restrictions) ReadGroup() Restrictions {
	return Restrictions{r.props.with("read.restrictions.group")}
}

func (r Restrictions) UpdateUser() Restrictions {
	return Restrictions{r.props.with("update.restrictions.user")}
}

func (r Restrictions) UpdateGroup() Restrictions {
	return Restrictions{r.props.with("update.restrictions.group")}
}

// History selects leaves of the history namespace
type History struct{ props properties }

func (h History) LastUpdated() History     { return History{h.props.with("lastUpdated")} }
func (h History) PreviousVersion() History { return History{h.props.with("previousVersion")} }
func (h History) Contributors() History    { return History{h.props.with("contributors")} }
func (h History) NextVersion() History     { return History{h.props.with("nextVersion")} }

// BodyFormat selects leaves below body.<bodyType>
type BodyFormat struct{ props properties }

func (f BodyFormat) Value() BodyFormat           { return BodyFormat{f.props.with("value")} }
func (f BodyFormat) Representation() BodyFormat  { return BodyFormat{f.props.with("representation")} }
func (f BodyFormat) WebResource() BodyFormat     { return BodyFormat{f.props.with("webresource")} }
func (f BodyFormat) EmbeddedContent() BodyFormat { return BodyFormat{f.props.with("embeddedContent")} }

// Descendants selects leaves of the descendants namespace
type Descendants struct{ props properties }

func (d Descendants) Page() Descendants       { return Descendants{d.props.with("page")} }
func (d Descendants) Comment() Descendants    { return Descendants{d.props.with("comment")} }
func (d Descendants) Attachment() Descendants { return Descendants{d.props.with("attachment")} }
