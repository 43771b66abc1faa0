package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/keetrykee/Kilua/internal/dispatch"
	"github.com/keetrykee/Kilua/internal/models"
	"github.com/keetrykee/Kilua/internal/persona"
	"github.com/keetrykee/Kilua/internal/profile"
	"github.com/keetrykee/Kilua/internal/session"
)

var welcomeLines = []string{
	"Welcome %s! Hope you're ready for some chaos 😈",
	"%s just joined. Another victim... I mean, friend! 💀",
	"Look what the cat dragged in... %s 🙄",
	"%s welcome! Try not to cry when I roast you later 🔥",
}

type Bot struct {
	api        *tgbotapi.BotAPI
	prefix     string
	classifier *dispatch.Classifier
	responder  *dispatch.Responder
	cooldowns  *session.Cooldowns
	history    *session.History
	registry   *persona.Registry
	profiles   profile.Store
	logger     *zap.Logger
}

func New(token string, classifier *dispatch.Classifier, responder *dispatch.Responder, cooldowns *session.Cooldowns, history *session.History, registry *persona.Registry, profiles profile.Store, prefix string, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &Bot{
		api:        api,
		prefix:     prefix,
		classifier: classifier,
		responder:  responder,
		cooldowns:  cooldowns,
		history:    history,
		registry:   registry,
		profiles:   profiles,
		logger:     logger,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("Bot online",
		zap.String("username", b.api.Self.UserName),
		zap.String("prefix", b.prefix))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}

		go b.handleMessage(ctx, update.Message)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	// A broken handler must never take down the update loop.
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in message handler",
				zap.Any("panic", r))
		}
	}()

	if len(message.NewChatMembers) > 0 {
		b.welcomeNewMembers(message)
		return
	}

	if message.From == nil || message.From.IsBot {
		return
	}

	userID := message.From.ID

	if b.cooldowns.OnCooldown(userID) {
		b.sendAck(message.Chat.ID, message.MessageID)
		return
	}

	if err := b.profiles.IncrementMessages(ctx, userID, displayName(message.From)); err != nil {
		b.logger.Error("Failed to update user profile",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	text := message.Text
	if message.Caption != "" {
		text = message.Caption
	}

	decision := b.classifier.Classify(models.Event{
		AuthorID:   userID,
		AuthorName: displayName(message.From),
		Text:       text,
		Mentioned:  b.mentionsMe(text),
		ReplyToBot: b.isReplyToMe(message),
	})

	b.act(ctx, message, decision)
}

// handleCommand maps native Telegram commands onto the same decisions
// the prefix commands produce.
func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	argText := strings.TrimSpace(message.CommandArguments())
	args := strings.Fields(argText)

	var decision models.Decision
	switch message.Command() {
	case "chat":
		decision = models.Decision{Action: models.ActionComplete, Prompt: argText}
	case "roast":
		target := argText
		if target == "" {
			target = displayName(message.From)
		}
		decision = models.Decision{Action: models.ActionComplete, Prompt: dispatch.RoastPrompt(target), Roast: true}
	case "start", "help":
		decision = models.Decision{Action: models.ActionHelp}
	case "stats":
		decision = models.Decision{Action: models.ActionStats}
	case "clear":
		decision = models.Decision{Action: models.ActionClear}
	case "personality":
		decision = models.Decision{Action: models.ActionPersonality, Args: args}
	case "model":
		decision = models.Decision{Action: models.ActionModel, Args: args}
	case "admin":
		decision = models.Decision{Action: models.ActionAdmin, Args: args}
	default:
		// Unknown commands are ignored silently, same as prefix ones.
		return
	}

	b.act(ctx, message, decision)
}

func (b *Bot) act(ctx context.Context, message *tgbotapi.Message, decision models.Decision) {
	switch decision.Action {
	case models.ActionComplete:
		if !decision.Respond() {
			return
		}
		if decision.Roast {
			if err := b.profiles.IncrementRoasts(ctx, message.From.ID); err != nil {
				b.logger.Error("Failed to update roast counter",
					zap.Error(err),
					zap.Int64("user_id", message.From.ID))
			}
		}
		b.generateResponse(ctx, message, decision.Prompt)
	case models.ActionHelp:
		b.sendHelp(message)
	case models.ActionStats:
		b.sendStats(ctx, message)
	case models.ActionClear:
		b.history.Clear(message.From.ID)
		b.sendReply(message, "🗑️ Your conversation history has been cleared!")
	case models.ActionPersonality:
		b.changePersonality(message, decision.Args)
	case models.ActionModel:
		b.changeModel(message, decision.Args)
	case models.ActionAdmin:
		// Declared but unenforced; the admin surface never shipped.
		b.logger.Info("Ignoring admin command",
			zap.Int64("user_id", message.From.ID),
			zap.Strings("args", decision.Args))
	}
}

func (b *Bot) generateResponse(ctx context.Context, message *tgbotapi.Message, prompt string) {
	chatID := message.Chat.ID
	replyTo := message.MessageID

	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("Failed to send typing action",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}

	send := func(text string) error {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyToMessageID = replyTo
		_, err := b.api.Send(msg)
		return err
	}

	if !b.responder.Respond(ctx, message.From.ID, prompt, send) {
		// A completion for this user is already in flight.
		b.sendAck(chatID, replyTo)
	}
}

func (b *Bot) sendHelp(message *tgbotapi.Message) {
	p := b.prefix
	help := fmt.Sprintf(`🔥 Kilua Commands

Chat:
%schat <message> - talk to me
@%s <message> - mention me
Reply to my messages

Fun:
%sroast [target] - get roasted
%spersonality <mode> - change my mood
%smodel <ai> - switch AI brain

Utility:
%sstats - your chat stats
%sclear - clear history
%shelp - this menu

Personalities: %s
Models: %s
Current: %s | %s`,
		p, b.api.Self.UserName, p, p, p, p, p, p,
		strings.Join(b.registry.PersonalityKeys(), ", "),
		strings.Join(b.registry.ModelKeys(), ", "),
		b.registry.Personality(), strings.ToUpper(b.registry.Model()))

	b.sendReply(message, help)
}

func (b *Bot) sendStats(ctx context.Context, message *tgbotapi.Message) {
	p, err := b.profiles.Get(ctx, message.From.ID)
	if err != nil {
		b.logger.Error("Failed to get user profile",
			zap.Error(err),
			zap.Int64("user_id", message.From.ID))
		b.sendErrorMessage(message.Chat.ID, "Sorry, I couldn't retrieve your stats.")
		return
	}

	stats := fmt.Sprintf(`📊 Stats for %s
💬 Messages: %d
🔥 Roasts received: %d
📅 First seen: %s`,
		displayName(message.From), p.Messages, p.Roasts, p.FirstSeen.Format("Mon Jan 2 2006"))

	b.sendReply(message, stats)
}

func (b *Bot) changePersonality(message *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.sendReply(message, "Available personalities: "+strings.Join(b.registry.PersonalityKeys(), ", "))
		return
	}

	key := strings.ToLower(args[0])
	if err := b.registry.SetPersonality(key); err != nil {
		b.sendReply(message, "Available personalities: "+strings.Join(b.registry.PersonalityKeys(), ", "))
		return
	}
	b.sendReply(message, fmt.Sprintf("🎭 Personality changed to %s!", key))
}

func (b *Bot) changeModel(message *tgbotapi.Message, args []string) {
	if len(args) == 0 {
		b.sendReply(message, "Available models: "+strings.Join(b.registry.ModelKeys(), ", "))
		return
	}

	key := strings.ToLower(args[0])
	if err := b.registry.SetModel(key); err != nil {
		b.sendReply(message, "Available models: "+strings.Join(b.registry.ModelKeys(), ", "))
		return
	}
	b.sendReply(message, fmt.Sprintf("🤖 Now using %s model!", strings.ToUpper(key)))
}

func (b *Bot) welcomeNewMembers(message *tgbotapi.Message) {
	for _, member := range message.NewChatMembers {
		if member.IsBot {
			continue
		}
		line := welcomeLines[rand.Intn(len(welcomeLines))]
		b.sendMessage(message.Chat.ID, fmt.Sprintf(line, displayName(&member)))
	}
}

func (b *Bot) mentionsMe(text string) bool {
	return b.api.Self.UserName != "" && strings.Contains(text, "@"+b.api.Self.UserName)
}

func (b *Bot) isReplyToMe(message *tgbotapi.Message) bool {
	reply := message.ReplyToMessage
	return reply != nil && reply.From != nil && reply.From.ID == b.api.Self.ID
}

// sendAck marks an event the bot saw but will not answer, e.g. while
// the author is on cooldown. Not a reply: it must not reset the window.
func (b *Bot) sendAck(chatID int64, replyToID int) {
	msg := tgbotapi.NewMessage(chatID, "⏰")
	msg.ReplyToMessageID = replyToID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send ack",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendReply(message *tgbotapi.Message, text string) {
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ReplyToMessageID = message.MessageID
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return user.FirstName
}
