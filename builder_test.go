package parley

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollection_Build(t *testing.T) {
	c, err := NewCollection("dinner_order").
		WithDescription("One diner's order for tonight's service.").
		Field("main_course", "The main course the diner wants.").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "dinner_order", c.Name())
	assert.Equal(t, "One diner's order for tonight's service.", c.Description())
	assert.Equal(t, "update_dinner_order", c.ToolName())
	require.Len(t, c.Fields(), 1)
	assert.Equal(t, "main_course", c.Fields()[0].Name())
	assert.NotNil(t, c.ToolSchema())

	f, ok := c.Field("main_course")
	require.True(t, ok)
	assert.Equal(t, "The main course the diner wants.", f.Description())

	_, ok = c.Field("no_such_field")
	assert.False(t, ok)
}

func TestNewCollection_NameValidation(t *testing.T) {
	tests := []struct {
		name    string
		colName string
		wantErr bool
	}{
		{"simple name", "orders", false},
		{"mixed case with digits", "Order66", false},
		{"underscores", "dinner_order_v2", false},
		{"empty", "", true},
		{"leading digit", "1order", true},
		{"space", "dinner order", true},
		{"dash", "dinner-order", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCollection(tt.colName).Field("f", "A field.").Build()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuilder_DuplicateFieldName(t *testing.T) {
	_, err := NewCollection("orders").
		Field("dish", "The dish.").
		Field("dish", "The dish again.").
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "dish" declared twice`)
}

func TestBuilder_EmptyFieldName(t *testing.T) {
	_, err := NewCollection("orders").
		Field("", "Anonymous field.").
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field name must not be empty")
}

func TestBuilder_ErrorsAreReportedTogether(t *testing.T) {
	_, err := NewCollection("bad name").
		Field("", "Anonymous.").
		Field("language", "Preferred language.").AsLang("").
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must match")
	assert.Contains(t, err.Error(), "field name must not be empty")
	assert.Contains(t, err.Error(), "lang cast requires a target language")
}

func TestBuilder_DefaultRoleKinds(t *testing.T) {
	c := NewCollection("orders").
		Field("dish", "The dish.").
		MustBuild()

	assert.Equal(t, "Agent", c.Role(RoleAgent).Kind())
	assert.Equal(t, "Respondent", c.Role(RoleRespondent).Kind())
}

func TestBuilder_RolesAndTraits(t *testing.T) {
	c := NewCollection("orders").
		WithRoleKind(RoleAgent, "Waiter").
		WithTrait(RoleAgent, "Courteous and efficient.").
		WithTrait(RoleAgent, "Courteous and efficient.").
		WithTrait(RoleAgent, "Never rushes the guest.").
		WithRoleKind(RoleRespondent, "Guest").
		WithPossibleTrait(RoleRespondent, "Vegan", "mentions avoiding meat").
		WithPossibleTrait(RoleRespondent, "Vegan", "mentions avoiding animal products").
		Field("dish", "The dish.").
		MustBuild()

	agent := c.Role(RoleAgent)
	assert.Equal(t, "Waiter", agent.Kind())
	// Duplicate trait declarations collapse to one.
	assert.Equal(t, []string{"Courteous and efficient.", "Never rushes the guest."}, agent.Traits())

	guest := c.Role(RoleRespondent)
	assert.Equal(t, "Guest", guest.Kind())
	possible := guest.PossibleTraits()
	// Re-registering a possible trait overwrites the trigger in place.
	require.Len(t, possible, 1)
	assert.Equal(t, "Vegan", possible[0].Name)
	assert.Equal(t, "mentions avoiding animal products", possible[0].Trigger)
}

func TestBuilder_UnknownRole(t *testing.T) {
	_, err := NewCollection("orders").
		WithRoleKind(RoleID("moderator"), "Moderator").
		Field("dish", "The dish.").
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown role "moderator"`)
}

func TestFieldBuilder_Rules(t *testing.T) {
	c := NewCollection("orders").
		Field("dish", "The dish.").
		Must("Name a dish from tonight's menu.").
		Must("Be specific about the preparation.").
		Reject("Dishes containing peanuts.").
		Hint("The menu changes daily.").
		MustBuild()

	f, _ := c.Field("dish")
	assert.Equal(t, []string{
		"Name a dish from tonight's menu.",
		"Be specific about the preparation.",
	}, f.Musts())
	assert.Equal(t, []string{"Dishes containing peanuts."}, f.Rejects())
	assert.Equal(t, []string{"The menu changes daily."}, f.Hints())
}

func TestFieldBuilder_ConcludeImpliesConfidential(t *testing.T) {
	c := NewCollection("interview").
		Field("name", "Candidate name.").
		Field("verdict", "Interviewer's verdict.").Conclude().
		MustBuild()

	verdict, _ := c.Field("verdict")
	assert.True(t, verdict.Conclude())
	assert.True(t, verdict.Confidential())

	name, _ := c.Field("name")
	assert.False(t, name.Confidential())
}

func TestFieldBuilder_CastDeclarationErrors(t *testing.T) {
	type input struct {
		declare func(fb *FieldBuilder) *FieldBuilder
	}

	type expected struct {
		errContains string
	}

	tests := []struct {
		name     string
		input    input
		expected expected
	}{
		{
			name: "lang cast requires a sub-name",
			input: input{declare: func(fb *FieldBuilder) *FieldBuilder {
				return fb.AsLang("")
			}},
			expected: expected{errContains: "lang cast requires a target language"},
		},
		{
			name: "cardinality cast requires options",
			input: input{declare: func(fb *FieldBuilder) *FieldBuilder {
				return fb.AsOne("size")
			}},
			expected: expected{errContains: "one cast requires at least one option"},
		},
		{
			name: "non-cardinality cast rejects options",
			input: input{declare: func(fb *FieldBuilder) *FieldBuilder {
				return fb.Cast(CastInt, "", "", "1", "2")
			}},
			expected: expected{errContains: "int cast does not take options"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewCollection("orders")
			tt.input.declare(b.Field("f", "A field."))
			_, err := b.Build()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expected.errContains)
		})
	}
}

func TestFieldBuilder_CastNames(t *testing.T) {
	c := NewCollection("profile").
		Field("everything", "A field with every cast kind.").
		AsInt().
		AsFloat().
		AsBool().
		AsPercent().
		AsString("formal", "Restate the value formally.").
		AsList().
		AsSet().
		AsMap().
		AsLang("indonesian").
		AsOne("size", "S", "M", "L").
		AsMaybe("tier", "Gold", "Silver").
		AsMulti("days", "Mon", "Tue").
		AsAny("extras", "Fries", "Salad").
		MustBuild()

	f, _ := c.Field("everything")
	var names []string
	for _, cs := range f.Casts() {
		names = append(names, cs.Name())
	}
	assert.Equal(t, []string{
		"int", "float", "bool", "percent", "str_formal", "list", "set",
		"map", "lang_indonesian", "one_size", "maybe_tier", "multi_days",
		"any_extras",
	}, names)

	// Every cast carries a prompt, default or explicit.
	for _, cs := range f.Casts() {
		assert.NotEmpty(t, cs.Prompt(), "cast %s has no prompt", cs.Name())
	}
}

func TestFieldBuilder_CastRedeclarationOverwritesInPlace(t *testing.T) {
	c := NewCollection("orders").
		Field("size", "The portion size.").
		AsOne("portion", "Small", "Large").
		AsInt().
		AsOne("portion", "Small", "Medium", "Large").
		MustBuild()

	f, _ := c.Field("size")
	casts := f.Casts()
	require.Len(t, casts, 2)
	// The redeclared cast keeps its original position.
	assert.Equal(t, "one_portion", casts[0].Name())
	assert.Equal(t, []string{"Small", "Medium", "Large"}, casts[0].Choices())
	assert.Equal(t, "int", casts[1].Name())
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewCollection("bad name").MustBuild()
	})
}
