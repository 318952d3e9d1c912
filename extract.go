package parley

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickchristie/parley/schema"
	"github.com/tmc/langchaingo/llms"
)

// cardinalityLabels maps the verbose key prefixes used in the tool schema to
// the short canonical cast names used everywhere else.
var cardinalityLabels = []struct{ long, short string }{
	{"exactly_one", "one"},
	{"zero_or_one", "maybe"},
	{"one_or_more", "multi"},
	{"zero_or_more", "any"},
}

// remapCastKey rewrites a verbose cardinality prefix back to its canonical
// short form. Total on all inputs and idempotent: a short name never matches
// a verbose label, so an already-canonical key passes through unchanged.
func remapCastKey(key string) string {
	for _, l := range cardinalityLabels {
		if key == l.long {
			return l.short
		}
		if strings.HasPrefix(key, l.long+"_") {
			return l.short + key[len(l.long):]
		}
	}
	return key
}

// buildToolSchema assembles the JSON Schema of the collection's update tool.
// The top level is an object with one optional property per field; every
// property is a closed sub-object requiring the base value, context, quote,
// and a result for each declared cast.
func buildToolSchema(c *Collection) map[string]any {
	props := make(map[string]any, len(c.fields))
	for _, f := range c.fields {
		props[f.name] = fieldEntrySchema(f)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
}

// compileToolSchema compiles the assembled schema for runtime validation.
func compileToolSchema(raw map[string]any) (*schema.Schema, error) {
	return schema.Compile(raw)
}

// fieldEntrySchema builds the sub-object schema of one field. A conforming
// entry carries the whole record at once; partial entries fail validation,
// which is what makes field updates atomic.
func fieldEntrySchema(f *FieldSpec) map[string]any {
	props := map[string]*schema.Property{
		"value":   schema.String(f.description),
		"context": schema.String("One sentence describing the conversational context the value was given in."),
		"quote":   schema.String("Verbatim quote from the respondent's message the value was taken from."),
	}
	required := []string{"value", "context", "quote"}
	for _, cs := range f.casts {
		key := cs.schemaKey()
		props[key] = castProperty(cs)
		required = append(required, key)
	}
	s := schema.StrictObject(props, required...)
	s["description"] = f.description
	return s
}

// castProperty maps one cast to its schema property.
func castProperty(cs *CastSpec) *schema.Property {
	switch cs.kind {
	case CastInt:
		return schema.Integer(cs.prompt)
	case CastFloat:
		return schema.Number(cs.prompt)
	case CastBool:
		return schema.Boolean(cs.prompt)
	case CastPercent:
		return schema.Number(cs.prompt).Min(0).Max(1)
	case CastList:
		return schema.Array(cs.prompt, map[string]any{"type": "string"})
	case CastSet:
		return schema.Array(cs.prompt, map[string]any{"type": "string"}).UniqueItems()
	case CastMap:
		return schema.Map(cs.prompt)
	case CastOne:
		return schema.String(cs.prompt).Enum(enumValues(cs.choices)...)
	case CastMaybe:
		return schema.NullableString(cs.prompt).Enum(append(enumValues(cs.choices), nil)...)
	case CastMulti:
		return schema.Array(cs.prompt, choiceItems(cs.choices)).MinItems(1).UniqueItems()
	case CastAny:
		return schema.Array(cs.prompt, choiceItems(cs.choices)).UniqueItems()
	default:
		// CastText, CastLang, and any future free-text kind.
		return schema.String(cs.prompt)
	}
}

func enumValues(choices []string) []any {
	out := make([]any, len(choices))
	for i, c := range choices {
		out[i] = c
	}
	return out
}

func choiceItems(choices []string) map[string]any {
	return map[string]any{"type": "string", "enum": enumValues(choices)}
}

// updateTool returns the collection's update tool in LangChainGo form.
func updateTool(c *Collection) llms.Tool {
	return llms.Tool{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name: c.ToolName(),
			Description: fmt.Sprintf(
				"Record values collected for %s. Include one entry per newly collected field.",
				c.name),
			Parameters: c.toolSchema,
		},
	}
}

// decodeUpdateArgs parses the raw tool call arguments into a JSON object.
func decodeUpdateArgs(raw json.RawMessage) (map[string]any, error) {
	var args any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	obj, ok := args.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("arguments must be a JSON object, got %T", args)
	}
	return obj, nil
}

// mergeUpdate validates the update arguments and merges them into values.
// The merge is atomic on two levels. Per field: the record is built whole
// from a validated entry, so a field never holds a partial record. Per call:
// validation happens before any write, so a rejected update changes nothing.
//
// Returns the names of the updated fields in collection declaration order.
func mergeUpdate(c *Collection, values map[string]*FieldValue, args map[string]any) ([]string, error) {
	if err := c.compiled.Validate(args); err != nil {
		return nil, err
	}

	type pending struct {
		name string
		fv   *FieldValue
	}
	var updates []pending
	for _, f := range c.fields {
		raw, ok := args[f.name]
		if !ok {
			continue
		}
		// Validation guarantees the entry shape; the assertions below
		// cannot fail on validated input.
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: entry is not an object", f.name)
		}
		fv := &FieldValue{
			Base:    stringAt(entry, "value"),
			Context: stringAt(entry, "context"),
			Quote:   stringAt(entry, "quote"),
		}
		for key, v := range entry {
			switch key {
			case "value", "context", "quote":
				continue
			}
			if fv.Transforms == nil {
				fv.Transforms = map[string]any{}
			}
			fv.Transforms[remapCastKey(key)] = v
		}
		updates = append(updates, pending{name: f.name, fv: fv})
	}

	names := make([]string, 0, len(updates))
	for _, u := range updates {
		values[u.name] = u.fv
		names = append(names, u.name)
	}
	return names, nil
}

func stringAt(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// updateAck renders the tool acknowledgement message for an applied update.
func updateAck(fields []string) string {
	if len(fields) == 0 {
		return "The update contained no fields. Collect values before calling the tool again."
	}
	return "Recorded: " + strings.Join(fields, ", ") + "."
}
