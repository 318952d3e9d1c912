package parley

import (
	"errors"
	"fmt"
	"regexp"
)

// toolNameRe constrains collection names to characters that stay valid when
// embedded in the update tool's name.
var toolNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Builder assembles a [Collection] declaratively. Declaration order is
// meaningful and preserved everywhere: field order, rule order, cast order,
// and trait order all flow through to prompts and schemas exactly as
// declared.
//
// Errors are accumulated while declaring and reported together by [Builder.Build],
// so a chain never needs intermediate error checks:
//
//	c, err := parley.NewCollection("FavoriteNumber").
//	    Field("number", "Your favorite number").
//	    AsInt().
//	    Must("be between 1 and 100").
//	    Build()
type Builder struct {
	name        string
	description string
	roles       map[RoleID]*Role
	fields      []*FieldSpec
	fieldIndex  map[string]int
	errs        []error
}

// NewCollection starts building a collection with the given name. The name
// must start with a letter and contain only letters, digits, and underscores;
// it becomes part of the update tool's name.
func NewCollection(name string) *Builder {
	b := &Builder{
		name: name,
		roles: map[RoleID]*Role{
			RoleAgent:      {id: RoleAgent},
			RoleRespondent: {id: RoleRespondent},
		},
		fieldIndex: map[string]int{},
	}
	if !toolNameRe.MatchString(name) {
		b.errs = append(b.errs, fmt.Errorf(
			"collection name %q must match %s", name, toolNameRe))
	}
	return b
}

// WithDescription sets the collection's description.
func (b *Builder) WithDescription(description string) *Builder {
	b.description = description
	return b
}

// WithRoleKind sets the free-text type label of a participant, such as
// "Waiter" for the agent or "Diner" for the respondent.
func (b *Builder) WithRoleKind(id RoleID, kind string) *Builder {
	if r := b.role(id); r != nil {
		r.kind = kind
	}
	return b
}

// WithTrait appends an always-present trait to a participant. Appending a
// trait that is already present is a no-op.
func (b *Builder) WithTrait(id RoleID, trait string) *Builder {
	if r := b.role(id); r != nil {
		r.addTrait(trait)
	}
	return b
}

// WithPossibleTrait registers a possible trait on a participant: a named
// trait paired with a natural-language trigger describing when it applies.
// Re-registering an existing name overwrites its trigger in place.
func (b *Builder) WithPossibleTrait(id RoleID, name, trigger string) *Builder {
	if r := b.role(id); r != nil {
		r.addPossible(name, trigger)
	}
	return b
}

func (b *Builder) role(id RoleID) *Role {
	r, ok := b.roles[id]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("unknown role %q", id))
		return nil
	}
	return r
}

// Field starts declaring a new field. Field names must be unique within the
// collection; redeclaring a name is a build error.
func (b *Builder) Field(name, description string) *FieldBuilder {
	if name == "" {
		b.errs = append(b.errs, errors.New("field name must not be empty"))
	} else if _, dup := b.fieldIndex[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("field %q declared twice", name))
	}
	f := &FieldSpec{name: name, description: description}
	b.fieldIndex[name] = len(b.fields)
	b.fields = append(b.fields, f)
	return &FieldBuilder{b: b, f: f}
}

// Build validates the accumulated declarations and returns the immutable
// collection. The update tool's JSON Schema is built and compiled here, so
// schema problems surface at definition time rather than mid-conversation.
func (b *Builder) Build() (*Collection, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("parley: invalid collection %q: %w", b.name, err)
	}
	for _, r := range b.roles {
		if r.kind == "" {
			r.kind = defaultRoleKind(r.id)
		}
	}
	for _, f := range b.fields {
		if f.conclude {
			f.confidential = true
		}
	}
	c := &Collection{
		name:        b.name,
		description: b.description,
		roles:       b.roles,
		fields:      b.fields,
		fieldIndex:  b.fieldIndex,
	}
	c.toolSchema = buildToolSchema(c)
	compiled, err := compileToolSchema(c.toolSchema)
	if err != nil {
		return nil, fmt.Errorf("parley: invalid collection %q: %w", b.name, err)
	}
	c.compiled = compiled
	return c, nil
}

// MustBuild is like [Builder.Build] but panics on error. Intended for
// declarations whose validity is established by tests.
func (b *Builder) MustBuild() *Collection {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// FieldBuilder declares rules and casts on one field. Its methods return the
// receiver; Field, Build, and the role methods chain back through the parent
// builder, so a whole collection reads as a single expression.
type FieldBuilder struct {
	b *Builder
	f *FieldSpec
}

// Must adds a validation rule the field's value must satisfy.
func (fb *FieldBuilder) Must(rule string) *FieldBuilder {
	fb.f.musts = append(fb.f.musts, rule)
	return fb
}

// Reject adds a rule describing values that must not be accepted.
func (fb *FieldBuilder) Reject(rule string) *FieldBuilder {
	fb.f.rejects = append(fb.f.rejects, rule)
	return fb
}

// Hint adds extra guidance for the model on how to ask about or interpret
// the field.
func (fb *FieldBuilder) Hint(text string) *FieldBuilder {
	fb.f.hints = append(fb.f.hints, text)
	return fb
}

// Confidential marks the field as collected silently: the agent never asks
// for it directly and records it only when the respondent volunteers it.
func (fb *FieldBuilder) Confidential() *FieldBuilder {
	fb.f.confidential = true
	return fb
}

// Conclude marks the field as filled by the model itself once every other
// field has been collected. Conclude implies Confidential.
func (fb *FieldBuilder) Conclude() *FieldBuilder {
	fb.f.conclude = true
	return fb
}

// AsInt casts the field's value to an integer.
func (fb *FieldBuilder) AsInt() *FieldBuilder {
	return fb.Cast(CastInt, "", "")
}

// AsFloat casts the field's value to a floating point number.
func (fb *FieldBuilder) AsFloat() *FieldBuilder {
	return fb.Cast(CastFloat, "", "")
}

// AsBool casts the field's value to a boolean.
func (fb *FieldBuilder) AsBool() *FieldBuilder {
	return fb.Cast(CastBool, "", "")
}

// AsPercent casts the field's value to a fraction between 0.0 and 1.0.
func (fb *FieldBuilder) AsPercent() *FieldBuilder {
	return fb.Cast(CastPercent, "", "")
}

// AsString adds a custom text rewrite cast stored under "str_<sub>". The
// prompt tells the model how to rewrite the value.
func (fb *FieldBuilder) AsString(sub, prompt string) *FieldBuilder {
	return fb.Cast(CastText, sub, prompt)
}

// AsList casts the field's value to an ordered list of strings.
func (fb *FieldBuilder) AsList() *FieldBuilder {
	return fb.Cast(CastList, "", "")
}

// AsSet casts the field's value to a set of unique strings.
func (fb *FieldBuilder) AsSet() *FieldBuilder {
	return fb.Cast(CastSet, "", "")
}

// AsMap casts the field's value to a key/value mapping.
func (fb *FieldBuilder) AsMap() *FieldBuilder {
	return fb.Cast(CastMap, "", "")
}

// AsLang translates the field's value into the given language, stored under
// "lang_<sub>". The sub-name is required; it names the target language.
func (fb *FieldBuilder) AsLang(sub string) *FieldBuilder {
	return fb.Cast(CastLang, sub, "")
}

// AsOne requires the model to choose exactly one of the given options.
func (fb *FieldBuilder) AsOne(sub string, choices ...string) *FieldBuilder {
	return fb.Cast(CastOne, sub, "", choices...)
}

// AsMaybe lets the model choose zero or one of the given options.
func (fb *FieldBuilder) AsMaybe(sub string, choices ...string) *FieldBuilder {
	return fb.Cast(CastMaybe, sub, "", choices...)
}

// AsMulti requires the model to choose one or more of the given options.
func (fb *FieldBuilder) AsMulti(sub string, choices ...string) *FieldBuilder {
	return fb.Cast(CastMulti, sub, "", choices...)
}

// AsAny lets the model choose zero or more of the given options.
func (fb *FieldBuilder) AsAny(sub string, choices ...string) *FieldBuilder {
	return fb.Cast(CastAny, sub, "", choices...)
}

// Cast declares a transformation in full generality: kind, optional sub-name,
// optional prompt override, and the option list for cardinality kinds.
// Re-declaring the same canonical name overwrites the earlier declaration in
// place, keeping its position in the cast order.
func (fb *FieldBuilder) Cast(kind CastKind, sub, prompt string, choices ...string) *FieldBuilder {
	if kind == CastLang && sub == "" {
		fb.b.errs = append(fb.b.errs, fmt.Errorf(
			"field %q: lang cast requires a target language sub-name", fb.f.name))
		return fb
	}
	if kind.Cardinality() && len(choices) == 0 {
		fb.b.errs = append(fb.b.errs, fmt.Errorf(
			"field %q: %s cast requires at least one option", fb.f.name, kind))
		return fb
	}
	if !kind.Cardinality() && len(choices) > 0 {
		fb.b.errs = append(fb.b.errs, fmt.Errorf(
			"field %q: %s cast does not take options", fb.f.name, kind))
		return fb
	}
	cs := newCast(kind, sub, prompt, choices)
	for i, existing := range fb.f.casts {
		if existing.name == cs.name {
			fb.f.casts[i] = cs
			return fb
		}
	}
	fb.f.casts = append(fb.f.casts, cs)
	return fb
}

// Field starts declaring the next field on the parent builder.
func (fb *FieldBuilder) Field(name, description string) *FieldBuilder {
	return fb.b.Field(name, description)
}

// WithDescription sets the collection's description.
func (fb *FieldBuilder) WithDescription(description string) *Builder {
	return fb.b.WithDescription(description)
}

// WithRoleKind sets a participant's type label on the parent builder.
func (fb *FieldBuilder) WithRoleKind(id RoleID, kind string) *Builder {
	return fb.b.WithRoleKind(id, kind)
}

// WithTrait appends a participant trait on the parent builder.
func (fb *FieldBuilder) WithTrait(id RoleID, trait string) *Builder {
	return fb.b.WithTrait(id, trait)
}

// WithPossibleTrait registers a possible trait on the parent builder.
func (fb *FieldBuilder) WithPossibleTrait(id RoleID, name, trigger string) *Builder {
	return fb.b.WithPossibleTrait(id, name, trigger)
}

// Build finishes the collection through the parent builder.
func (fb *FieldBuilder) Build() (*Collection, error) {
	return fb.b.Build()
}

// MustBuild finishes the collection through the parent builder, panicking on
// error.
func (fb *FieldBuilder) MustBuild() *Collection {
	return fb.b.MustBuild()
}
