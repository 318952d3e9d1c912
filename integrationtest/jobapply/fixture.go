// Package jobapply provides a screening interview collection for
// integration testing. The fixture leans on every cast kind, so a single
// scripted run covers the whole extraction surface.
package jobapply

import (
	"github.com/rickchristie/parley"
)

// StackOptions are the languages the stack field chooses from.
var StackOptions = []string{"Go", "Python", "TypeScript", "Rust", "Java"}

// NewScreeningInterview builds the screening interview collection: a
// recruiter at Nusatech walking a candidate through a first-round chat for
// a backend engineering opening.
func NewScreeningInterview() *parley.Collection {
	return parley.NewCollection("screening_interview").
		WithDescription("First-round screening chat for a backend engineer opening at Nusatech.").
		WithRoleKind(parley.RoleAgent, "Recruiter").
		WithTrait(parley.RoleAgent, "Friendly, but keeps the conversation on track.").
		WithRoleKind(parley.RoleRespondent, "Candidate").
		WithPossibleTrait(parley.RoleRespondent, "Career switcher",
			"The candidate comes from a non-engineering background.").
		Field("years_experience", "Years of professional software experience.").
		Must("be a single number, not a range").
		AsInt().
		Field("expected_salary", "Expected annual salary in USD.").
		Hint("Ask for a single figure; nudge politely if given a range.").
		AsFloat().
		Field("remote_only", "Whether the candidate will only consider remote work.").
		AsBool().
		Field("stack", "Languages the candidate is comfortable shipping production code in.").
		AsMulti("known", StackOptions...).
		Field("seniority", "The level the candidate sees themselves at.").
		AsOne("level", "junior", "mid", "senior", "staff").
		Field("perks", "Benefits the candidate singled out as attractive.").
		AsAny("wants", "equity", "learning_budget", "relocation", "four_day_week").
		Field("visa", "The candidate's work authorization, if it comes up.").
		AsMaybe("status", "citizen", "permanent_resident", "needs_sponsorship").
		Field("self_rating", "How the candidate rates their own skills, area by area.").
		AsMap().
		Field("motivation", "Why the candidate wants this particular role.").
		Reject("generic answers that could apply to any company").
		AsString("headline", "Rewrite the motivation as a single resume-style headline.").
		AsLang("id").
		Field("current_salary", "The candidate's current salary, if they volunteer it.").
		Confidential().
		AsFloat().
		Field("fit", "Overall impression of how strong a fit the candidate is.").
		Conclude().
		AsPercent().
		MustBuild()
}
