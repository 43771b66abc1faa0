package dispatch

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"github.com/keetrykee/Kilua/internal/models"
)

// DefaultAmbientChance is the probability of replying to a message that
// neither carries a command nor addresses the bot.
const DefaultAmbientChance = 0.01

var mentionPattern = regexp.MustCompile(`@\w+`)

// Classifier turns an inbound event into a dispatch decision. Rules are
// evaluated in order, first match wins: prefix command, mention or
// reply-to-bot, ambient random trigger, ignore.
type Classifier struct {
	prefix        string
	ambientChance float64
	rand          func() float64
}

func NewClassifier(prefix string, ambientChance float64) *Classifier {
	return &Classifier{
		prefix:        prefix,
		ambientChance: ambientChance,
		rand:          rand.Float64,
	}
}

// WithRand substitutes the random source. Used by tests.
func (c *Classifier) WithRand(f func() float64) *Classifier {
	c.rand = f
	return c
}

func (c *Classifier) Classify(event models.Event) models.Decision {
	if c.prefix != "" && strings.HasPrefix(event.Text, c.prefix) {
		return c.classifyCommand(event)
	}

	if event.Mentioned || event.ReplyToBot {
		prompt := strings.TrimSpace(mentionPattern.ReplaceAllString(event.Text, ""))
		return models.Decision{Action: models.ActionComplete, Prompt: prompt}
	}

	if c.rand() < c.ambientChance {
		return models.Decision{
			Action: models.ActionComplete,
			Prompt: AmbientPrompt(event.Text),
		}
	}

	return models.Decision{Action: models.ActionNone}
}

func (c *Classifier) classifyCommand(event models.Event) models.Decision {
	fields := strings.Fields(strings.TrimPrefix(event.Text, c.prefix))
	if len(fields) == 0 {
		return models.Decision{Action: models.ActionNone}
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "chat":
		return models.Decision{Action: models.ActionComplete, Prompt: strings.Join(args, " ")}
	case "roast":
		target := strings.Join(args, " ")
		if target == "" {
			target = event.AuthorName
		}
		return models.Decision{Action: models.ActionComplete, Prompt: RoastPrompt(target), Roast: true}
	case "help":
		return models.Decision{Action: models.ActionHelp}
	case "stats":
		return models.Decision{Action: models.ActionStats}
	case "clear":
		return models.Decision{Action: models.ActionClear}
	case "personality":
		return models.Decision{Action: models.ActionPersonality, Args: args}
	case "model":
		return models.Decision{Action: models.ActionModel, Args: args}
	case "admin":
		return models.Decision{Action: models.ActionAdmin, Args: args}
	default:
		// Unrecognized commands are ignored silently.
		return models.Decision{Action: models.ActionNone}
	}
}

// RoastPrompt is the completion instruction for a roast request.
func RoastPrompt(target string) string {
	return fmt.Sprintf("Roast this person with no mercy: %s. Be creative and savage.", target)
}

// AmbientPrompt wraps a message the bot decided to react to unprompted.
func AmbientPrompt(text string) string {
	return fmt.Sprintf("React to this message randomly: \"%s\"", text)
}
