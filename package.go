// Package parley orchestrates conversations that collect structured data.
//
// A parley conversation has two participants: the agent (driven by an LLM,
// asking the questions) and the respondent (the human supplying answers). The
// goal of the conversation is a Collection: a fixed set of named fields, each
// with validation rules and typed transformations, filled in gradually as the
// dialogue progresses. The agent decides what to ask and when; parley decides
// what has been collected, what remains, and when the conversation is done.
//
// # Quick Start: Taking a Dinner Order
//
// Define what to collect, who is talking, and let the engine drive:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//
//	    "github.com/rickchristie/parley"
//	    "github.com/rickchristie/parley/models"
//	    "github.com/tmc/langchaingo/llms/openai"
//	)
//
//	func main() {
//	    // 1. Describe the collection.
//	    order := parley.NewCollection("DinnerOrder").
//	        WithDescription("A complete dinner order for one diner.").
//	        WithRoleKind(parley.RoleAgent, "Waiter at a fine restaurant").
//	        WithRoleKind(parley.RoleRespondent, "Diner").
//	        Field("starter", "Which starter the diner would like").
//	        AsOne("", "Garden salad", "Soup of the day", "Garlic bread").
//	        Field("main_course", "Which main course the diner would like").
//	        AsOne("", "Veggie pasta", "Grilled salmon", "Steak frites").
//	        MustBuild()
//
//	    // 2. Wrap any LangChainGo chat model.
//	    llm, _ := openai.New(openai.WithModel("gpt-4o"))
//	    model := models.NewLCG(llm)
//
//	    // 3. Create the engine and a conversation thread.
//	    engine := parley.NewEngine(order, model)
//	    thread := parley.NewThreadID()
//
//	    // 4. Drive the conversation turn by turn.
//	    reply, _ := engine.Advance(context.Background(), thread, "")
//	    fmt.Println("Agent:", reply) // opening question
//
//	    reply, _ = engine.Advance(context.Background(), thread, "The salad, please.")
//	    fmt.Println("Agent:", reply)
//
//	    // 5. Inspect what has been collected so far.
//	    snap, _, _ := engine.Snapshot(context.Background(), thread)
//	    if fv := snap.Field("starter").Value; fv != nil {
//	        fmt.Println("starter =", fv.Base)
//	    }
//	}
//
// # Collections, Fields, and Casts
//
// A Collection is an immutable template built once with the fluent builder and
// shared by any number of concurrent conversations. Each Field carries a
// natural-language description, Must/Reject validation rules the agent
// enforces conversationally, and optional Hint guidance. Fields marked
// Confidential are collected silently when the respondent happens to volunteer
// them; fields marked Conclude are filled by the model itself at the very end
// of the conversation.
//
// Casts attach typed transformations to a field. The base value of every field
// is a string; casts ask the model to additionally produce an integer, float,
// boolean, percentage, list, set, mapping, translation, or a choice from an
// enumerated option list:
//
//	c := parley.NewCollection("JobApplication").
//	    Field("years_experience", "Years of professional experience").
//	    AsInt().
//	    Field("languages", "Programming languages the candidate knows").
//	    AsMulti("", "Go", "Python", "Rust", "TypeScript").
//	    MustBuild()
//
// Choice casts come in four cardinalities: AsOne (exactly one option), AsMaybe
// (zero or one), AsMulti (one or more), and AsAny (zero or more). Typed
// results are read back through [FieldValue] accessors such as Int, Bool, and
// Choices.
//
// # The Conversation Loop
//
// Engine.Advance is the single entry point. Each call accepts the
// respondent's latest utterance (or "" to fetch the current agent message) and
// returns the agent's next words. Internally the engine walks a small state
// machine: think (call the model), tools (apply a structured update when the
// model decided to record field values), listen (wait for the respondent), and
// teardown (conversation complete). One Advance call makes at most two model
// calls: one that produces an update plus one that produces the next
// user-facing message.
//
// Collected values arrive through exactly one dynamically built tool named
// update_<collection>. The engine validates every update against a JSON
// Schema compiled from the collection at build time; malformed updates reject
// the whole turn and leave the conversation at its previous stable state.
//
// # Checkpoints and Stores
//
// Conversation state is externalized as a [Checkpoint]: message history,
// collected values, activated traits, and the machine state. A [Store]
// persists checkpoints by thread id. The built-in memory store suits tests
// and single-process use; the store/sqlite package persists conversations
// across restarts:
//
//	st, _ := sqlite.Open("conversations.db")
//	engine := parley.NewEngine(order, model).WithStore(st)
//
// Any Advance call with a known thread id resumes exactly where the
// conversation left off, including after a process restart.
//
// # Hooks
//
// The engine emits lifecycle events: advance start/end, model calls, updates,
// state changes, trait activations. Implement any of the narrow hook
// interfaces ([BeforeModelCallHook], [AfterUpdateHook], ...) and register the
// hook with a hooks.Registry to observe a conversation without touching the
// loop:
//
//	reg := hooks.NewRegistry().Register(myLogger)
//	engine := parley.NewEngine(order, model).WithHooks(reg)
//
// See the integrationtest directory for complete scenarios, including an
// interactive CLI.
package parley
