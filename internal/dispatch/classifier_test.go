package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keetrykee/Kilua/internal/models"
)

// neverAmbient keeps the random rule out of deterministic tests.
func neverAmbient() float64 { return 1.0 }

func newTestClassifier() *Classifier {
	return NewClassifier("!", DefaultAmbientChance).WithRand(neverAmbient)
}

func TestClassifyChatCommand(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "!chat hello"})
	assert.True(t, d.Respond())
	assert.Equal(t, "hello", d.Prompt)
}

func TestClassifyChatCommandNoArgumentSuppressed(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "!chat"})
	assert.False(t, d.Respond(), "empty prompt must suppress the reply")
}

func TestClassifyDeterministic(t *testing.T) {
	c := newTestClassifier()
	event := models.Event{AuthorID: 1, Text: "!chat tell me something"}

	first := c.Classify(event)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(event))
	}
}

func TestClassifyRoastWithTarget(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, AuthorName: "alice", Text: "!roast bob the builder"})
	assert.True(t, d.Respond())
	assert.Equal(t, "Roast this person with no mercy: bob the builder. Be creative and savage.", d.Prompt)
}

func TestClassifyRoastDefaultsToAuthor(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, AuthorName: "alice", Text: "!roast"})
	assert.True(t, d.Respond())
	assert.Equal(t, RoastPrompt("alice"), d.Prompt)
}

func TestClassifySideEffectCommands(t *testing.T) {
	c := newTestClassifier()

	cases := []struct {
		text   string
		action models.Action
		args   []string
	}{
		{"!help", models.ActionHelp, nil},
		{"!stats", models.ActionStats, nil},
		{"!clear", models.ActionClear, nil},
		{"!personality chaos", models.ActionPersonality, []string{"chaos"}},
		{"!model claude", models.ActionModel, []string{"claude"}},
		{"!admin ban somebody", models.ActionAdmin, []string{"ban", "somebody"}},
	}
	for _, tc := range cases {
		d := c.Classify(models.Event{AuthorID: 1, Text: tc.text})
		assert.Equal(t, tc.action, d.Action, tc.text)
		assert.Equal(t, tc.args, d.Args, tc.text)
		assert.False(t, d.Respond(), tc.text)
	}
}

func TestClassifyUnknownCommandIgnored(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "!frobnicate now", Mentioned: true})
	assert.Equal(t, models.ActionNone, d.Action, "unknown command must not fall through to later rules")
}

func TestClassifyBarePrefixIgnored(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "!"})
	assert.Equal(t, models.ActionNone, d.Action)
}

func TestClassifyMentionStripsTokens(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "@kilua_bot what is up @someone", Mentioned: true})
	assert.True(t, d.Respond())
	assert.Equal(t, "what is up", d.Prompt)
}

func TestClassifyMentionOnlySuppressed(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "@kilua_bot", Mentioned: true})
	assert.False(t, d.Respond())
}

func TestClassifyReplyToBot(t *testing.T) {
	c := newTestClassifier()

	d := c.Classify(models.Event{AuthorID: 1, Text: "and then what", ReplyToBot: true})
	assert.True(t, d.Respond())
	assert.Equal(t, "and then what", d.Prompt)
}

func TestClassifyAmbientTrigger(t *testing.T) {
	c := NewClassifier("!", DefaultAmbientChance).WithRand(func() float64 { return 0.0 })

	d := c.Classify(models.Event{AuthorID: 1, Text: "just vibing"})
	assert.True(t, d.Respond())
	assert.Equal(t, `React to this message randomly: "just vibing"`, d.Prompt)
}

func TestClassifyAmbientNotTriggered(t *testing.T) {
	c := NewClassifier("!", DefaultAmbientChance).WithRand(func() float64 { return 0.5 })

	d := c.Classify(models.Event{AuthorID: 1, Text: "just vibing"})
	assert.Equal(t, models.ActionNone, d.Action)
}
