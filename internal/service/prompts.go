package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/cardforge/cardforge-go/internal/models"
)

// Bounded read windows applied to job content per AI call. Long documents are
// segmented by the outline, not by feeding the whole text to every call.
const (
	outlineContentWindow = 12000
	cardContentWindow    = 6000
)

// excerpt returns a prefix of content of at most n bytes, cut on a rune
// boundary so multibyte text never reaches the model truncated mid-rune.
func excerpt(content string, n int) string {
	if len(content) <= n {
		return content
	}
	for n > 0 && !utf8.RuneStart(content[n]) {
		n--
	}
	return content[:n]
}

// styleInstructions returns the mode-specific explanation style. Modes vary
// prompt text only; the JSON contract is identical across modes.
func styleInstructions(mode models.Mode) string {
	switch mode {
	case models.ModeSimplified:
		return `Explain in plain, everyday language. Use one concrete analogy per card
to anchor the concept. Avoid jargon; where a technical term is unavoidable,
define it in the same sentence.`
	case models.ModeRigorous:
		return `Explain with full technical precision. Use exact terminology and state
definitions, conditions and exceptions explicitly. Do not use analogies or
informal comparisons.`
	case models.ModeDialogue:
		return `Write the explanation as a dialogue between exactly two speakers, "A"
and "B", in strictly alternating turns. Speaker B must primarily ask probing
questions and challenge A's claims, not merely acknowledge them. Every turn
starts on its own line with "A: " or "B: ".`
	default:
		return `Explain in a clear, structured way: start from the core idea, then the
mechanism, then one brief example.`
	}
}

// buildOutlinePrompt embeds the adaptive topic range and style instructions
// into the single outline-stage generation call.
func buildOutlinePrompt(content string, minTopics, maxTopics int, mode models.Mode) string {
	return fmt.Sprintf(`You are building a study-card outline from source material.

Read the source text and produce between %d and %d topics that together cover
its key knowledge units. Order topics from foundational to advanced.

%s

Respond with ONLY a JSON object in this exact shape:
{"topics": [{"title": "...", "category": "...", "difficulty": "Easy|Medium|Hard"}]}

Source text:
%s`, minTopics, maxTopics, styleInstructions(mode), excerpt(content, outlineContentWindow))
}

// buildCardPrompt combines the topic, style instructions and a bounded
// content excerpt into one card-expansion generation call.
func buildCardPrompt(topic models.Topic, content string, mode models.Mode) string {
	return fmt.Sprintf(`You are writing one study card for the topic below, grounded in the
source text.

Topic: %s
Category: %s
Difficulty: %s

%s

The "body" field must be a complete explanation of 300-800 characters.
Respond with ONLY a JSON object in this exact shape:
{"title": "...", "category": "...", "difficulty": "Easy|Medium|Hard",
 "body": "...", "flashcard": {"question": "...", "answer": "..."}}

Source text:
%s`, topic.Title, topic.Category, topic.Difficulty,
		styleInstructions(mode), excerpt(content, cardContentWindow))
}
