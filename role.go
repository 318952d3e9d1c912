package parley

// RoleID identifies one of the two conversation participants.
type RoleID string

const (
	// RoleAgent is the participant driven by the model. It asks the
	// questions and records the collected values.
	RoleAgent RoleID = "agent"
	// RoleRespondent is the participant supplying the answers.
	RoleRespondent RoleID = "respondent"
)

// valid reports whether id names one of the two participants.
func (id RoleID) valid() bool {
	return id == RoleAgent || id == RoleRespondent
}

// Role describes one conversation participant: a free-text type label, a list
// of always-present traits, and a list of possible traits that only apply
// once activated.
type Role struct {
	id       RoleID
	kind     string
	traits   []string
	possible []PossibleTrait
}

// PossibleTrait is a trait that applies only after its trigger condition is
// met. The trigger is opaque natural-language guidance; the engine never
// evaluates it, it only relays it to the model and tracks which traits have
// been activated per conversation.
type PossibleTrait struct {
	// Name identifies the trait.
	Name string
	// Trigger describes the condition under which the trait applies.
	Trigger string
}

// ID returns which participant this role describes.
func (r *Role) ID() RoleID { return r.id }

// Kind returns the role's free-text type label, such as "Waiter" or
// "Software engineer candidate".
func (r *Role) Kind() string { return r.kind }

// Traits returns the always-present traits in declaration order.
func (r *Role) Traits() []string {
	out := make([]string, len(r.traits))
	copy(out, r.traits)
	return out
}

// PossibleTraits returns the declared possible traits in declaration order.
func (r *Role) PossibleTraits() []PossibleTrait {
	out := make([]PossibleTrait, len(r.possible))
	copy(out, r.possible)
	return out
}

// hasPossible reports whether a possible trait with the given name is
// declared on this role.
func (r *Role) hasPossible(name string) bool {
	for _, p := range r.possible {
		if p.Name == name {
			return true
		}
	}
	return false
}

// addTrait appends a trait. Appending a trait that is already present is a
// no-op.
func (r *Role) addTrait(trait string) {
	for _, t := range r.traits {
		if t == trait {
			return
		}
	}
	r.traits = append(r.traits, trait)
}

// addPossible registers a possible trait. Re-registering an existing name
// overwrites its trigger in place, keeping declaration order stable.
func (r *Role) addPossible(name, trigger string) {
	for i, p := range r.possible {
		if p.Name == name {
			r.possible[i].Trigger = trigger
			return
		}
	}
	r.possible = append(r.possible, PossibleTrait{Name: name, Trigger: trigger})
}

// defaultRoleKind returns the type label used when the builder never set one.
func defaultRoleKind(id RoleID) string {
	switch id {
	case RoleAgent:
		return "Agent"
	default:
		return "Respondent"
	}
}
