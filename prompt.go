package parley

import (
	"bytes"
	_ "embed"
	"slices"
	"text/template"
)

//go:embed prompt_system.tmpl
var systemTemplateContent string

// DefaultSystemTemplate renders the system prompt placed at the start of
// every conversation. Replace it per engine via [Engine.WithSystemTemplate];
// custom templates receive a [SystemPromptData].
var DefaultSystemTemplate = template.Must(
	template.New("parley_system").Parse(systemTemplateContent),
)

// SystemPromptData is the data passed to system prompt templates. It is
// derived deterministically from a collection and a checkpoint: the same
// template, schema, and conversation state always render byte-identical
// prompts.
type SystemPromptData struct {
	// Collection is the collection's name.
	Collection string

	// Description is the collection's description, "" when unset.
	Description string

	// ToolName is the name of the update tool.
	ToolName string

	// Agent describes the model's own role.
	Agent RolePrompt

	// Respondent describes the human participant.
	Respondent RolePrompt

	// Fields lists the fields the agent asks about, confidential ones
	// included, in declaration order.
	Fields []FieldPrompt

	// Conclude lists the fields the model fills in on its own at the end
	// of the conversation.
	Conclude []FieldPrompt
}

// RolePrompt is one participant's slice of the prompt data.
type RolePrompt struct {
	// Kind is the participant's type label.
	Kind string

	// Traits holds the traits that currently apply: always-present traits
	// followed by activated possible traits, each group in reverse
	// declaration order.
	Traits []string

	// Possible holds the not-yet-activated possible traits in reverse
	// declaration order.
	Possible []PossibleTrait
}

// FieldPrompt is one field's slice of the prompt data.
type FieldPrompt struct {
	// Name is the field's name.
	Name string

	// Description is the field's description.
	Description string

	// Rules holds the rendered rule lines: musts, rejects, hints, and the
	// confidentiality instruction, in that order.
	Rules []string
}

// BuildSystemPrompt renders the default system prompt for one conversation.
// It is pure: collected values never feed back into the prompt, only the
// schema and the set of activated traits do.
func BuildSystemPrompt(c *Collection, cp *Checkpoint) string {
	out, err := executeSystemTemplate(DefaultSystemTemplate, BuildSystemPromptData(c, cp))
	if err != nil {
		// The default template renders any valid data.
		panic(err)
	}
	return out
}

// BuildSystemPromptData derives the template data for one conversation.
func BuildSystemPromptData(c *Collection, cp *Checkpoint) SystemPromptData {
	data := SystemPromptData{
		Collection:  c.name,
		Description: c.description,
		ToolName:    c.ToolName(),
		Agent:       buildRolePrompt(c.roles[RoleAgent], cp),
		Respondent:  buildRolePrompt(c.roles[RoleRespondent], cp),
	}
	respondent := c.roles[RoleRespondent].kind
	for _, f := range c.fields {
		fp := FieldPrompt{
			Name:        f.name,
			Description: f.description,
			Rules:       promptRules(f, respondent),
		}
		if f.conclude {
			data.Conclude = append(data.Conclude, fp)
		} else {
			data.Fields = append(data.Fields, fp)
		}
	}
	return data
}

// executeSystemTemplate renders a system prompt template.
func executeSystemTemplate(tmpl *template.Template, data SystemPromptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildRolePrompt folds a role's declared traits and the conversation's
// activated traits into prompt form. Later declarations render first; an
// activated possible trait moves from the Possible list into Traits.
func buildRolePrompt(r *Role, cp *Checkpoint) RolePrompt {
	rp := RolePrompt{Kind: r.kind, Traits: reversed(r.traits)}
	var active []string
	for _, p := range r.possible {
		if cp.traitActive(r.id, p.Name) {
			active = append(active, p.Name)
		} else {
			rp.Possible = append(rp.Possible, p)
		}
	}
	rp.Traits = append(rp.Traits, reversed(active)...)
	slices.Reverse(rp.Possible)
	return rp
}

func reversed(in []string) []string {
	out := slices.Clone(in)
	slices.Reverse(out)
	return out
}

// promptRules renders a field's rule lines in a single flat channel: musts,
// then rejects, then hints, then the confidentiality instruction.
func promptRules(f *FieldSpec, respondent string) []string {
	rules := make([]string, 0, len(f.musts)+len(f.rejects)+len(f.hints)+1)
	for _, m := range f.musts {
		rules = append(rules, "Must: "+m)
	}
	for _, r := range f.rejects {
		rules = append(rules, "Reject: "+r)
	}
	for _, h := range f.hints {
		rules = append(rules, "Hint: "+h)
	}
	if f.confidential && !f.conclude {
		rules = append(rules,
			"Confidential: never ask about this directly. Record it only if the "+
				respondent+" brings it up, and do not reveal that you track it.")
	}
	return rules
}
