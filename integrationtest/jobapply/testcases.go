package jobapply

import (
	"context"
	"io"

	"github.com/rickchristie/parley/integrationtest/testutil"
)

// RunScreeningScenario runs a scripted screening interview against a live
// model. The candidate volunteers several answers per message, so the model
// has to batch fields into single update calls.
func RunScreeningScenario(
	ctx context.Context,
	w io.Writer,
	config testutil.TestConfig,
) error {
	_, err := testutil.RunScript(ctx, w, config, testutil.ScriptConfig{
		Name:        "jobapply-screening",
		HeaderTitle: "JOB APPLICATION SCREENING SCENARIO",
		Collection:  NewScreeningInterview(),
		Replies: []string{
			"Hi! I have 7 years of experience, mostly Go and Python. " +
				"I'm looking for around 140k, and these days I only consider remote roles.",
			"I'd say senior. The four-day week and the learning budget " +
				"really caught my eye. No visa concerns, I'm a citizen.",
			"Go 9 out of 10, Kubernetes 7, Postgres 8. As for why: I use " +
				"your open-source data tooling every day and I'd rather build " +
				"it than just consume it. I'm on 118k right now.",
			"That's everything from me. Looking forward to hearing back!",
			"Thanks, bye!",
		},
		MaxTurns: 12,
	})
	return err
}

// ScreeningTestCases returns the job application test cases for the CLI menu.
func ScreeningTestCases() []testutil.TestCase {
	return []testutil.TestCase{
		{
			Name: "Screening Interview",
			Description: "A backend candidate answers in bulk, " +
				"exercising every cast kind",
			Run: RunScreeningScenario,
		},
	}
}
