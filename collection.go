package parley

import (
	"github.com/rickchristie/parley/schema"
)

// Collection is the immutable template of a conversation: which fields to
// collect, their rules and casts, and who the two participants are. Build one
// with [NewCollection]; once built it never changes, and any number of
// concurrent conversations may share it. All per-conversation state lives in
// the [Checkpoint].
type Collection struct {
	name        string
	description string
	roles       map[RoleID]*Role
	fields      []*FieldSpec
	fieldIndex  map[string]int
	toolSchema  map[string]any
	compiled    *schema.Schema
}

// ToolSchema returns the raw JSON Schema of the collection's update tool.
// Built once at [Builder.Build] time; treat it as read-only.
func (c *Collection) ToolSchema() map[string]any { return c.toolSchema }

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Description returns the collection's description, or "" when none was set.
func (c *Collection) Description() string { return c.description }

// ToolName returns the name of the dynamically built update tool for this
// collection: "update_" followed by the collection name.
func (c *Collection) ToolName() string { return "update_" + c.name }

// Role returns the description of the given participant.
func (c *Collection) Role(id RoleID) *Role { return c.roles[id] }

// Fields returns the field specs in declaration order.
func (c *Collection) Fields() []*FieldSpec {
	out := make([]*FieldSpec, len(c.fields))
	copy(out, c.fields)
	return out
}

// Field returns the spec of the named field.
func (c *Collection) Field(name string) (*FieldSpec, bool) {
	i, ok := c.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return c.fields[i], true
}

// complete reports whether every field has a collected value. Conclude and
// confidential fields count the same as ordinary ones.
func (c *Collection) complete(values map[string]*FieldValue) bool {
	for _, f := range c.fields {
		if values[f.name] == nil {
			return false
		}
	}
	return true
}

// snapshot merges the template with one conversation's collected values.
func (c *Collection) snapshot(cp *Checkpoint) *Snapshot {
	snap := &Snapshot{
		Collection: c.name,
		State:      cp.State,
		Complete:   c.complete(cp.Values),
		Fields:     make([]FieldSnapshot, len(c.fields)),
	}
	for i, f := range c.fields {
		snap.Fields[i] = FieldSnapshot{
			Name:        f.name,
			Description: f.description,
			Value:       cp.Values[f.name],
		}
	}
	return snap
}

// FieldSpec is one datum the conversation collects. Specs are declared
// through the builder and immutable afterwards.
type FieldSpec struct {
	name         string
	description  string
	musts        []string
	rejects      []string
	hints        []string
	confidential bool
	conclude     bool
	casts        []*CastSpec
}

// Name returns the field's name, unique within its collection.
func (f *FieldSpec) Name() string { return f.name }

// Description returns the natural-language description of the field.
func (f *FieldSpec) Description() string { return f.description }

// Musts returns the validation rules a value must satisfy, in declaration
// order.
func (f *FieldSpec) Musts() []string {
	out := make([]string, len(f.musts))
	copy(out, f.musts)
	return out
}

// Rejects returns the rules a value must not violate, in declaration order.
func (f *FieldSpec) Rejects() []string {
	out := make([]string, len(f.rejects))
	copy(out, f.rejects)
	return out
}

// Hints returns extra guidance for the model, in declaration order.
func (f *FieldSpec) Hints() []string {
	out := make([]string, len(f.hints))
	copy(out, f.hints)
	return out
}

// Confidential reports whether the field is collected silently: the agent
// never asks for it directly and records it only when the respondent happens
// to volunteer it.
func (f *FieldSpec) Confidential() bool { return f.confidential }

// Conclude reports whether the field is filled by the model itself at the end
// of the conversation instead of being asked. Conclude implies Confidential.
func (f *FieldSpec) Conclude() bool { return f.conclude }

// Casts returns the field's declared casts in declaration order.
func (f *FieldSpec) Casts() []*CastSpec {
	out := make([]*CastSpec, len(f.casts))
	copy(out, f.casts)
	return out
}

// cast returns the cast with the given canonical name.
func (f *FieldSpec) cast(name string) (*CastSpec, bool) {
	for _, cs := range f.casts {
		if cs.name == name {
			return cs, true
		}
	}
	return nil, false
}

// FieldValue is the collected record for one field. The record is written
// atomically: the base value and every cast result come from the same update
// call, so either the whole record exists or none of it does.
type FieldValue struct {
	// Base is the field's value as a string, the model's faithful
	// restatement of what the respondent said.
	Base string `json:"value"`
	// Context is a one-sentence note on the conversational context the
	// value was given in.
	Context string `json:"context"`
	// Quote is the verbatim respondent quote the value was taken from.
	Quote string `json:"quote"`
	// Transforms holds the cast results keyed by canonical cast name.
	Transforms map[string]any `json:"transforms,omitempty"`
}

// Transform returns the raw cast result stored under the canonical name.
func (v *FieldValue) Transform(name string) (any, bool) {
	if v == nil || v.Transforms == nil {
		return nil, false
	}
	t, ok := v.Transforms[name]
	return t, ok
}

// Int returns the named cast result as an integer. JSON numbers arrive as
// float64; Int truncates toward zero.
func (v *FieldValue) Int(name string) (int64, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return 0, false
	}
	switch n := t.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// Float returns the named cast result as a float.
func (v *FieldValue) Float(name string) (float64, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return 0, false
	}
	switch n := t.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Bool returns the named cast result as a boolean.
func (v *FieldValue) Bool(name string) (bool, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return false, false
	}
	b, ok := t.(bool)
	return b, ok
}

// Percent returns the named cast result as a fraction between 0.0 and 1.0.
func (v *FieldValue) Percent(name string) (float64, bool) {
	return v.Float(name)
}

// Text returns the named cast result as a string. Use it for str and lang
// casts.
func (v *FieldValue) Text(name string) (string, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return "", false
	}
	s, ok := t.(string)
	return s, ok
}

// Choice returns the selected option of a one or maybe cast. A maybe cast
// that selected nothing reports false.
func (v *FieldValue) Choice(name string) (string, bool) {
	t, ok := v.Transform(name)
	if !ok || t == nil {
		return "", false
	}
	s, ok := t.(string)
	return s, ok
}

// Choices returns the selected options of a multi or any cast. Also handles
// list and set casts, whose results share the same shape.
func (v *FieldValue) Choices(name string) ([]string, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return nil, false
	}
	items, ok := t.([]any)
	if !ok {
		// Already materialized, e.g. by a round-trip through yaml.
		if ss, ok := t.([]string); ok {
			return ss, true
		}
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Map returns the result of a map cast.
func (v *FieldValue) Map(name string) (map[string]any, bool) {
	t, ok := v.Transform(name)
	if !ok {
		return nil, false
	}
	m, ok := t.(map[string]any)
	return m, ok
}

// clone returns a deep copy of the record.
func (v *FieldValue) clone() *FieldValue {
	if v == nil {
		return nil
	}
	out := &FieldValue{Base: v.Base, Context: v.Context, Quote: v.Quote}
	if v.Transforms != nil {
		out.Transforms = make(map[string]any, len(v.Transforms))
		for k, t := range v.Transforms {
			out.Transforms[k] = cloneValue(t)
		}
	}
	return out
}

// cloneValue deep-copies the JSON-shaped values cast results are made of.
func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Snapshot is the merged view of a collection template and one
// conversation's collected values.
type Snapshot struct {
	// Collection is the collection's name.
	Collection string `json:"collection"`
	// State is the conversation's machine state at snapshot time.
	State State `json:"state"`
	// Complete reports whether every field has been collected.
	Complete bool `json:"complete"`
	// Fields lists every field in declaration order, collected or not.
	Fields []FieldSnapshot `json:"fields"`
}

// FieldSnapshot is one field's slice of a [Snapshot].
type FieldSnapshot struct {
	// Name is the field's name.
	Name string `json:"name"`
	// Description is the field's description.
	Description string `json:"description"`
	// Value is the collected record, or nil while the field is still open.
	Value *FieldValue `json:"value,omitempty"`
}

// Field returns the named field's snapshot, or nil when the collection has no
// such field.
func (s *Snapshot) Field(name string) *FieldSnapshot {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
