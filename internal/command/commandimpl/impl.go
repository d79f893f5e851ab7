package commandimpl

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/reel-ranker/internal/command"
	"github.com/orgball2608/reel-ranker/internal/ratelimit"
	"github.com/orgball2608/reel-ranker/internal/repositories/content"
	"github.com/orgball2608/reel-ranker/internal/resolver"
	"github.com/orgball2608/reel-ranker/internal/telegram"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

const helpMessage = `👋 *Reel Ranker*

Send Instagram post or reel links and get them scored for relevance\.

/resolve <url> \- Resolve one link and show its score\.
/rank <url> <url> \.\.\. \- Resolve several links and rank them\.
/top \[n\] \- Show the best scored links seen so far\.

Type /help at any time to see this guide\.`

const (
	rateLimitedMessage = "⏳ Slow down a little, try again in a moment\\."
	unknownMessage     = "Unknown command\\. Type /help to see the list of available commands\\."
)

type Opts struct {
	fx.In

	Resolver resolver.Client
	Repo     content.Repository
	Telegram telegram.Client
	Limiter  ratelimit.Limiter
	Logger   logger.Logger
	Config   *config.Config
}

type CommandImpl struct {
	Resolver resolver.Client
	Repo     content.Repository
	Telegram telegram.Client
	Limiter  ratelimit.Limiter
	Logger   logger.Logger

	commandTimeout time.Duration
}

func New(opts Opts) *CommandImpl {
	timeout := opts.Config.Telegram.CommandTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CommandImpl{
		Resolver:       opts.Resolver,
		Repo:           opts.Repo,
		Telegram:       opts.Telegram,
		Limiter:        opts.Limiter,
		Logger:         opts.Logger.WithComponent("Command"),
		commandTimeout: timeout,
	}
}

var _ command.Client = (*CommandImpl)(nil)

func (c *CommandImpl) HandleCommand(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := c.Telegram.GetUpdatesChan(u)
	c.Logger.Info("Command handler started, listening for updates.")

	for {
		select {
		case <-ctx.Done():
			c.Logger.Info("Command handler shutting down.")
			c.Telegram.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				c.Logger.Warn("Telegram updates channel closed unexpectedly.")
				return errors.New("telegram updates channel closed")
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			go func(u tgbotapi.Update) {
				defer func() {
					if r := recover(); r != nil {
						c.Logger.Error("Panic recovered while processing an update", "panic", r, "stack", string(debug.Stack()))
					}
				}()

				if err := c.processCommand(ctx, u); err != nil {
					c.Logger.Error("Error processing command",
						"command", u.Message.Command(),
						"error", err)
				}
			}(update)
		}
	}
}

func (c *CommandImpl) processCommand(ctx context.Context, update tgbotapi.Update) error {
	cmd := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID

	c.Logger.Info("Command received", "command", cmd, "chatID", chatID)

	switch cmd {
	case "start", "help":
		_, err := c.Telegram.SendMessage(chatID, helpMessage)
		return err
	case "resolve", "rank", "top":
	default:
		_, err := c.Telegram.SendMessage(chatID, unknownMessage)
		return err
	}

	if !c.Limiter.Allow(chatID) {
		c.Logger.Warn("Chat rate limited", "chatID", chatID, "command", cmd)
		_, err := c.Telegram.SendMessage(chatID, rateLimitedMessage)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.commandTimeout)
	defer cancel()

	switch cmd {
	case "resolve":
		return c.handleResolve(ctx, chatID, args)
	case "rank":
		return c.handleRank(ctx, chatID, args)
	default:
		return c.handleTop(ctx, chatID, args)
	}
}
