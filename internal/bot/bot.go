// Package bot is the Telegram moderation bot. It posts alerts about flagged
// messages and risk escalations to a moderator chat and answers lookup
// commands there.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xaenox/kindred/internal/analyzer"
	"github.com/xaenox/kindred/internal/metrics"
	"github.com/xaenox/kindred/internal/models"
	"github.com/xaenox/kindred/internal/service"
)

const (
	defaultAlertsPerMinute = 20
	alertQueueSize         = 64
	maxQuotedRunes         = 200
)

type Config struct {
	Token           string
	ModeratorChatID int64
	AlertsPerMinute int
}

// sender is the part of the Telegram client the bot needs.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api             *tgbotapi.BotAPI
	send            sender
	svc             *service.Service
	metrics         *metrics.Metrics
	logger          *zap.Logger
	moderatorChatID int64
	limiter         *rate.Limiter
	alerts          chan tgbotapi.Chattable
}

func New(cfg Config, svc *service.Service, m *metrics.Metrics, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	b := newBot(api, cfg, svc, m, logger)
	b.api = api
	return b, nil
}

func newBot(s sender, cfg Config, svc *service.Service, m *metrics.Metrics, logger *zap.Logger) *Bot {
	perMinute := cfg.AlertsPerMinute
	if perMinute <= 0 {
		perMinute = defaultAlertsPerMinute
	}
	return &Bot{
		send:            s,
		svc:             svc,
		metrics:         m,
		logger:          logger,
		moderatorChatID: cfg.ModeratorChatID,
		limiter:         rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		alerts:          make(chan tgbotapi.Chattable, alertQueueSize),
	}
}

// Start delivers queued alerts and handles commands until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	go b.runAlerts(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			go b.handleCommand(ctx, update.Message)
		}
	}
}

// FlaggedMessage implements service.Alerter.
func (b *Bot) FlaggedMessage(_ context.Context, msg *models.Message) error {
	b.enqueue(formatFlaggedMessage(msg))
	return nil
}

// RiskEscalated implements service.Alerter.
func (b *Bot) RiskEscalated(_ context.Context, ra *models.RiskAssessment, previous models.RiskLevel) error {
	b.enqueue(formatRiskEscalation(ra, previous))
	return nil
}

// enqueue never blocks the caller: alerts over the rate limit or beyond the
// queue are dropped and counted.
func (b *Bot) enqueue(text string) {
	if !b.limiter.Allow() {
		b.metrics.IncAlert("throttled")
		b.logger.Warn("Moderator alert throttled")
		return
	}

	msg := tgbotapi.NewMessage(b.moderatorChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	select {
	case b.alerts <- msg:
	default:
		b.metrics.IncAlert("dropped")
		b.logger.Warn("Moderator alert queue full")
	}
}

func (b *Bot) runAlerts(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.alerts:
			if _, err := b.send.Send(msg); err != nil {
				b.metrics.IncAlert("failed")
				b.logger.Error("Failed to send moderator alert",
					zap.Error(err),
					zap.Int64("chat_id", b.moderatorChatID))
				continue
			}
			b.metrics.IncAlert("sent")
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	reply := b.reply(ctx, message.Chat.ID, message.Command(), strings.TrimSpace(message.CommandArguments()))
	reply.ReplyToMessageID = message.MessageID
	if _, err := b.send.Send(reply); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", message.Chat.ID),
			zap.String("command", message.Command()))
	}
}

// reply builds the response to a command. Lookups about users are only
// answered in the moderator chat.
func (b *Bot) reply(ctx context.Context, chatID int64, command, args string) tgbotapi.MessageConfig {
	markdown := func(text string) tgbotapi.MessageConfig {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		return msg
	}

	switch command {
	case "start":
		return tgbotapi.NewMessage(chatID, welcomeText)
	case "help":
		return tgbotapi.NewMessage(chatID, helpText)
	case "analyze":
		if args == "" {
			return tgbotapi.NewMessage(chatID, "Usage: /analyze <text>")
		}
		return markdown(formatAnalysis(b.svc.AnalyzeText(args, analyzer.KindSafety)))
	case "trust", "risk":
		if chatID != b.moderatorChatID {
			return tgbotapi.NewMessage(chatID, "This command is only available to moderators.")
		}
		if args == "" {
			return tgbotapi.NewMessage(chatID, fmt.Sprintf("Usage: /%s <user id>", command))
		}
		if command == "trust" {
			ts, err := b.svc.GetTrustScore(ctx, args)
			if err != nil {
				return b.lookupFailed(chatID, args, err)
			}
			return markdown(formatTrust(ts))
		}
		ra, err := b.svc.GetRiskAssessment(ctx, args)
		if err != nil {
			return b.lookupFailed(chatID, args, err)
		}
		return markdown(formatRisk(ra))
	case "verify":
		if chatID != b.moderatorChatID {
			return tgbotapi.NewMessage(chatID, "This command is only available to moderators.")
		}
		fields := strings.Fields(args)
		if len(fields) != 2 {
			return tgbotapi.NewMessage(chatID, "Usage: /verify <user id> <signal>")
		}
		signal, err := b.svc.VerifySignal(ctx, fields[0], models.SafetySignalType(strings.ToUpper(fields[1])))
		switch {
		case errors.Is(err, service.ErrInvalid):
			return tgbotapi.NewMessage(chatID, "Unknown signal. Use one of: "+strings.Join(signalNames(), ", "))
		case errors.Is(err, service.ErrNotFound):
			return tgbotapi.NewMessage(chatID, "No such user.")
		case err != nil:
			return b.lookupFailed(chatID, fields[0], err)
		}
		return markdown(formatVerified(signal))
	default:
		return tgbotapi.NewMessage(chatID, "Unknown command. Use /help to see available commands.")
	}
}

func (b *Bot) lookupFailed(chatID int64, userID string, err error) tgbotapi.MessageConfig {
	b.logger.Error("Moderator lookup failed",
		zap.Error(err),
		zap.String("user_id", userID))
	return tgbotapi.NewMessage(chatID, "⚠️ Sorry, I couldn't look that user up. Please try again later.")
}

const welcomeText = `Kindred moderation bot 🛡️
I post alerts about flagged messages and users whose risk level goes up.
Use /help to see all available commands.`

const helpText = `Available commands:
/start - Start the bot
/help - Show this help message
/analyze <text> - Run the safety analysis on a piece of text
/trust <user id> - Show a user's trust score (moderators)
/risk <user id> - Show a user's risk assessment (moderators)
/verify <user id> <signal> - Grant a verification badge (moderators)`
