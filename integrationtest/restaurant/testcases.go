package restaurant

import (
	"context"
	"io"

	"github.com/rickchristie/parley/integrationtest/testutil"
)

// RunDinnerScenario runs a scripted dinner order against a live model.
func RunDinnerScenario(
	ctx context.Context,
	w io.Writer,
	config testutil.TestConfig,
) error {
	_, err := testutil.RunScript(ctx, w, config, testutil.ScriptConfig{
		Name:        "restaurant-dinner",
		HeaderTitle: "RESTAURANT DINNER ORDER SCENARIO",
		Collection:  NewDinnerOrder(),
		Replies: []string{
			"Good evening! I think I'll have the mushroom risotto, please.",
			"A glass of the house red and some still water would be lovely.",
			"Oh, I should mention I'm allergic to hazelnuts.",
			"No, that's everything. Thank you so much!",
			"That's all, really. Thank you!",
		},
		MaxTurns: 12,
	})
	return err
}

// DinnerTestCases returns the restaurant test cases for the CLI menu.
func DinnerTestCases() []testutil.TestCase {
	return []testutil.TestCase{
		{
			Name: "Dinner Order",
			Description: "A guest orders the risotto, wine, and " +
				"mentions an allergy along the way",
			Run: RunDinnerScenario,
		},
	}
}
