package coach

import (
	"fmt"
	"math/rand"
	"strings"
)

const openingTemplate = "You want to reflect on \"%s\". Why did you want to think more deeply about this?"

// Opening is the fixed first question of a session. The topic appears
// verbatim.
func Opening(topic string) string {
	return fmt.Sprintf(openingTemplate, topic)
}

// SystemPrompt builds the coach persona instruction for one turn.
func SystemPrompt(topic string, stage Stage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a coach helping someone reflect on their day. They chose the topic %q. ", topic)
	b.WriteString("Ask one question that helps them think about it more deeply.\n\n")
	b.WriteString("Ask questions that fit the stage of the conversation:\n")
	b.WriteString("- initial (turns 1-2): explore the background and the concrete situation\n")
	b.WriteString("- middle (turns 3-4): shift perspective and dig deeper\n")
	b.WriteString("- late (turn 5 onward): focus on actions and lessons\n\n")
	fmt.Fprintf(&b, "Current stage: %s (%s).\n", stage, stage.Guidance())
	b.WriteString("Keep the question short and offer a view from outside the user's current thinking.")
	return b.String()
}

var fallbackQuestions = map[Stage][]string{
	StageInitial: {
		"Could you tell me a little more about that situation?",
		"How did you feel at that moment?",
		"What was going on in the background of that event?",
		"What did the situation look like, concretely?",
	},
	StageMiddle: {
		"How might this look from a different point of view?",
		"If you could turn back time, what would you change?",
		"What did you learn from that experience?",
		"Why do you think it turned out that way?",
	},
	StageLate: {
		"How could you put this experience to use from now on?",
		"If a similar situation came up, how would you handle it?",
		"Did this reflection help you notice anything new?",
		"Let's think about a plan for what you will do next.",
	},
}

// FallbackQuestions returns the local question set for a stage.
func FallbackQuestions(s Stage) []string {
	qs, ok := fallbackQuestions[s]
	if !ok {
		qs = fallbackQuestions[StageInitial]
	}
	out := make([]string, len(qs))
	copy(out, qs)
	return out
}

func pickFallback(s Stage, rnd *rand.Rand) string {
	qs, ok := fallbackQuestions[s]
	if !ok {
		qs = fallbackQuestions[StageInitial]
	}
	return qs[rnd.Intn(len(qs))]
}
