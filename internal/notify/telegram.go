package notify

import (
	"context"
	"fmt"
	"strings"

	"cybershield/internal/models"
	"cybershield/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	cmdStart   = "/start"
	cmdMenu    = "/menu"
	cmdSummary = "/summary"
	cmdImport  = "/import"
	cmdRuns    = "/runs"

	recentRuns = 5
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ImportRunner запускает импорт и отдает историю запусков
type ImportRunner interface {
	Run(ctx context.Context, trigger string) (*service.Result, error)
	Runs(ctx context.Context, limit int) ([]models.ImportRun, error)
}

// TelegramBot структура админского телеграм бота
type TelegramBot struct {
	api       *tgbotapi.BotAPI
	bot       sender
	imports   ImportRunner
	dashboard service.DashboardService
	admins    []int64
	log       logrus.FieldLogger
}

// NewTelegramBot создает новый экземпляр телеграм бота
func NewTelegramBot(token string, imports ImportRunner, dashboard service.DashboardService, admins []int64, log logrus.FieldLogger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramBot{
		api:       api,
		bot:       api,
		imports:   imports,
		dashboard: dashboard,
		admins:    admins,
		log:       log,
	}, nil
}

// Start читает обновления до отмены контекста
func (b *TelegramBot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
			} else if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
			}
		}
	}
}

// NotifyImport рассылает отчет всем администраторам
func (b *TelegramBot) NotifyImport(_ context.Context, result *service.Result) error {
	text := reportText(result)
	var firstErr error
	for _, chatID := range b.admins {
		if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("telegram chat %d: %w", chatID, err)
		}
	}
	return firstErr
}

func (b *TelegramBot) isAdmin(chatID int64) bool {
	for _, id := range b.admins {
		if id == chatID {
			return true
		}
	}
	return false
}

// command returns the leading "/cmd" of a message, without a "@botname" suffix.
func command(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(cmd)
}

func (b *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	if !b.isAdmin(chatID) {
		b.sendMessage(chatID, "⛔ Доступ только для администраторов.")
		return
	}

	switch command(message.Text) {
	case cmdStart, cmdMenu:
		b.sendMainMenu(chatID)
	case cmdSummary:
		b.handleSummary(ctx, chatID)
	case cmdImport:
		b.handleImport(ctx, chatID)
	case cmdRuns:
		b.handleRuns(ctx, chatID)
	default:
		b.sendMessage(chatID, "Неизвестная команда. Используйте кнопки меню или отправьте /menu")
	}
}

func (b *TelegramBot) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	if _, err := b.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		b.log.WithError(err).Debug("callback ack failed")
	}
	if !b.isAdmin(chatID) {
		return
	}

	switch callback.Data {
	case "summary":
		b.handleSummary(ctx, chatID)
	case "import":
		b.handleImport(ctx, chatID)
	case "runs":
		b.handleRuns(ctx, chatID)
	}
}

func (b *TelegramBot) sendMainMenu(chatID int64) {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Сводка", "summary"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Запустить импорт", "import"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Последние запуски", "runs"),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "Главное меню:")
	msg.ReplyMarkup = keyboard
	if _, err := b.bot.Send(msg); err != nil {
		b.log.WithError(err).Warn("telegram send failed")
	}
}

func (b *TelegramBot) handleSummary(ctx context.Context, chatID int64) {
	c, err := b.dashboard.Summary(ctx)
	if err != nil {
		b.sendMessage(chatID, "Ошибка при получении сводки: "+err.Error())
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(
		"📊 Мероприятий: %d\nАктивностей: %d\nУчастников: %d\nМодераторов: %d\nЖюри: %d\nОрганизаторов: %d\nКоманд: %d",
		c.Events, c.Activities, c.Participants, c.Moderators, c.Jury, c.Organizers, c.Teams))
}

// handleImport runs the import synchronously; the report itself arrives through NotifyImport.
func (b *TelegramBot) handleImport(ctx context.Context, chatID int64) {
	b.sendMessage(chatID, "⏳ Импорт запущен...")
	if _, err := b.imports.Run(ctx, "telegram"); err != nil {
		b.sendMessage(chatID, "❌ Импорт не выполнен: "+err.Error())
	}
}

func (b *TelegramBot) handleRuns(ctx context.Context, chatID int64) {
	runs, err := b.imports.Runs(ctx, recentRuns)
	if err != nil {
		b.sendMessage(chatID, "Ошибка при получении истории: "+err.Error())
		return
	}
	if len(runs) == 0 {
		b.sendMessage(chatID, "Импорт еще не запускался.")
		return
	}
	var sb strings.Builder
	for _, run := range runs {
		fmt.Fprintf(&sb, "%s %s (%s): %s\n", run.StartedAt.Format("02.01.2006 15:04"), run.ID.String()[:8], run.Trigger, run.Status)
	}
	b.sendMessage(chatID, strings.TrimRight(sb.String(), "\n"))
}

func (b *TelegramBot) sendMessage(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.WithError(err).Warn("telegram send failed")
	}
}
