package parley

import (
	"fmt"
	"strings"
)

// CastKind identifies the shape of a typed transformation the model produces
// alongside a field's base value.
type CastKind string

const (
	// CastInt parses the value as an integer.
	CastInt CastKind = "int"
	// CastFloat parses the value as a floating point number.
	CastFloat CastKind = "float"
	// CastBool interprets the value as a boolean.
	CastBool CastKind = "bool"
	// CastPercent interprets the value as a fraction between 0.0 and 1.0.
	CastPercent CastKind = "percent"
	// CastText rewrites the value as text following a custom prompt.
	CastText CastKind = "str"
	// CastList splits the value into an ordered list of strings.
	CastList CastKind = "list"
	// CastSet splits the value into unique strings.
	CastSet CastKind = "set"
	// CastMap extracts the value as a key/value mapping.
	CastMap CastKind = "map"
	// CastLang translates the value into a target language.
	CastLang CastKind = "lang"

	// CastOne chooses exactly one option from an enumerated list.
	CastOne CastKind = "one"
	// CastMaybe chooses zero or one option from an enumerated list.
	CastMaybe CastKind = "maybe"
	// CastMulti chooses one or more options from an enumerated list.
	CastMulti CastKind = "multi"
	// CastAny chooses zero or more options from an enumerated list.
	CastAny CastKind = "any"
)

// Cardinality reports whether the kind is a choice constraint over an
// enumerated option list.
func (k CastKind) Cardinality() bool {
	switch k {
	case CastOne, CastMaybe, CastMulti, CastAny:
		return true
	}
	return false
}

// Nullable reports whether the kind permits zero selected options. Only
// meaningful for cardinality kinds.
func (k CastKind) Nullable() bool {
	return k == CastMaybe || k == CastAny
}

// Multi reports whether the kind permits more than one selected option. Only
// meaningful for cardinality kinds.
func (k CastKind) Multi() bool {
	return k == CastMulti || k == CastAny
}

// schemaLabel returns the verbose prefix used for this kind in the update
// tool's argument schema. Spelled-out labels steer the model more reliably
// than the short canonical names; the merge step rewrites them back.
func (k CastKind) schemaLabel() string {
	switch k {
	case CastOne:
		return "exactly_one"
	case CastMaybe:
		return "zero_or_one"
	case CastMulti:
		return "one_or_more"
	case CastAny:
		return "zero_or_more"
	}
	return string(k)
}

// CastSpec describes one typed transformation attached to a field. The model
// produces a result for every declared cast in the same update call that
// records the field's base value.
type CastSpec struct {
	name    string
	kind    CastKind
	sub     string
	prompt  string
	choices []string
}

// Name returns the canonical cast name: the kind's base name, suffixed with
// "_<sub>" when a sub-name was declared. Results are stored in
// [FieldValue.Transforms] under this name.
func (c *CastSpec) Name() string { return c.name }

// Kind returns the cast's kind.
func (c *CastSpec) Kind() CastKind { return c.kind }

// Sub returns the cast's sub-name, or "" when none was declared.
func (c *CastSpec) Sub() string { return c.sub }

// Prompt returns the natural-language instruction the model follows to
// produce the cast's result.
func (c *CastSpec) Prompt() string { return c.prompt }

// Choices returns the option list of a cardinality cast. Empty for
// non-cardinality kinds.
func (c *CastSpec) Choices() []string {
	out := make([]string, len(c.choices))
	copy(out, c.choices)
	return out
}

// schemaKey returns the key this cast occupies in the update tool's argument
// schema. Cardinality kinds use the verbose label in place of the short base
// name; every other kind uses the canonical name unchanged.
func (c *CastSpec) schemaKey() string {
	if !c.kind.Cardinality() {
		return c.name
	}
	if c.sub == "" {
		return c.kind.schemaLabel()
	}
	return c.kind.schemaLabel() + "_" + c.sub
}

// newCast builds a CastSpec, deriving the canonical name and falling back to
// the kind's default prompt when none is given.
func newCast(kind CastKind, sub, prompt string, choices []string) *CastSpec {
	name := string(kind)
	if sub != "" {
		name += "_" + sub
	}
	if prompt == "" {
		prompt = defaultCastPrompt(kind, sub, choices)
	}
	return &CastSpec{
		name:    name,
		kind:    kind,
		sub:     sub,
		prompt:  prompt,
		choices: choices,
	}
}

// defaultCastPrompt returns the instruction used when the caller declares a
// cast without an explicit prompt.
func defaultCastPrompt(kind CastKind, sub string, choices []string) string {
	switch kind {
	case CastInt:
		return "The value parsed as an integer."
	case CastFloat:
		return "The value parsed as a floating point number."
	case CastBool:
		return "The value interpreted as true or false."
	case CastPercent:
		return "The value as a fraction between 0.0 and 1.0."
	case CastText:
		return "The value restated as text."
	case CastList:
		return "The value split into an ordered list of strings."
	case CastSet:
		return "The distinct items mentioned in the value, without duplicates."
	case CastMap:
		return "The value broken down into a key/value mapping."
	case CastLang:
		return fmt.Sprintf("The value translated into %s.", sub)
	case CastOne:
		return fmt.Sprintf("Exactly one of: %s.", strings.Join(choices, ", "))
	case CastMaybe:
		return fmt.Sprintf("Zero or one of: %s. Use null when none applies.", strings.Join(choices, ", "))
	case CastMulti:
		return fmt.Sprintf("One or more of: %s.", strings.Join(choices, ", "))
	case CastAny:
		return fmt.Sprintf("Zero or more of: %s.", strings.Join(choices, ", "))
	}
	return "The transformed value."
}
