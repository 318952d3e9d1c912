// Package restaurant provides a dinner-order collection for integration
// testing: a waiter filling out a guest's order over the course of a
// conversation.
package restaurant

import (
	"github.com/rickchristie/parley"
)

// MenuDishes are tonight's main courses, used as the option list of the
// main_course field.
var MenuDishes = []string{
	"Beef Bourguignon",
	"Duck Confit",
	"Mushroom Risotto",
	"Ratatouille",
}

// NewDinnerOrder builds the dinner order collection: a waiter at Maison
// Lumière taking one guest's order.
//
// The collection exercises the common field shapes: an enumerated choice,
// a list, a confidential set, and a concluding percent judgement.
func NewDinnerOrder() *parley.Collection {
	return parley.NewCollection("dinner_order").
		WithDescription("Tonight's dinner order for one guest at Maison Lumière.").
		WithRoleKind(parley.RoleAgent, "Waiter").
		WithTrait(parley.RoleAgent, "Warm and attentive, never pushy.").
		WithTrait(parley.RoleAgent, "Knows tonight's menu by heart.").
		WithRoleKind(parley.RoleRespondent, "Guest").
		WithPossibleTrait(parley.RoleRespondent, "Vegetarian",
			"The guest avoids meat or orders only vegetable dishes.").
		Field("main_course", "The main course the guest settles on.").
		Must("be a dish from tonight's menu").
		AsOne("menu", MenuDishes...).
		Field("drinks", "Everything the guest wants to drink.").
		Hint("Offer the wine pairing before falling back to soft drinks.").
		AsList().
		Field("allergies", "Food allergies the guest mentions.").
		Confidential().
		AsSet().
		Field("tip_likelihood", "How likely the guest seems to leave a generous tip.").
		Conclude().
		AsPercent().
		MustBuild()
}
