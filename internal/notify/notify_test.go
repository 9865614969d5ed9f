package notify

import (
	"context"
	"errors"
	"io"
	"net/smtp"
	"testing"
	"time"

	"cybershield/internal/importer"
	"cybershield/internal/models"
	"cybershield/internal/repository"
	"cybershield/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(status models.ImportStatus) *service.Result {
	return &service.Result{
		Run: &models.ImportRun{
			ID:      uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001"),
			Trigger: "manual",
			Source:  "dir:./import",
			Policy:  "strict",
			Status:  status,
			Error:   "workbook not found: import/Город_import.xlsx",
		},
		Report: importer.Report{Countries: 2, Events: 1, Teams: 1},
	}
}

func TestSMTPMailer_SendsReport(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "bot@example.com", "secret", []string{"a@example.com", "b@example.com"})
	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	m.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, m.NotifyImport(context.Background(), sampleResult(models.ImportSucceeded)))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Импорт данных конференции: успешно")
	assert.Contains(t, gotMsg, "To: a@example.com, b@example.com")
	assert.Contains(t, gotMsg, "стран 2")
}

func TestSMTPMailer_FailedRunAndErrors(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "bot@example.com", "secret", []string{"a@example.com"})
	var msg string
	m.sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, b []byte) error {
		msg = string(b)
		return errors.New("connection refused")
	}

	err := m.NotifyImport(context.Background(), sampleResult(models.ImportFailed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, msg, "Subject: Импорт данных конференции: ошибка")
	assert.Contains(t, msg, "Ошибка: workbook not found")
}

func TestSMTPMailer_NoRecipients(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "bot@example.com", "secret", nil)
	m.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not send without recipients")
		return nil
	}
	assert.NoError(t, m.NotifyImport(context.Background(), sampleResult(models.ImportSucceeded)))
}

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func (f *fakeSender) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) texts() []string {
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeImports struct {
	calls []string
	runs  []models.ImportRun
	err   error
}

func (f *fakeImports) Run(_ context.Context, trigger string) (*service.Result, error) {
	f.calls = append(f.calls, trigger)
	return nil, f.err
}

func (f *fakeImports) Runs(context.Context, int) ([]models.ImportRun, error) {
	return f.runs, nil
}

type fakeDashboard struct{}

func (fakeDashboard) Summary(context.Context) (repository.Counts, error) {
	return repository.Counts{Events: 2, Activities: 5, Participants: 40, Teams: 3}, nil
}

func (fakeDashboard) UsersByRole(context.Context, models.Role) ([]models.User, error) { return nil, nil }

func (fakeDashboard) UpcomingActivities(context.Context, int) ([]models.Activity, error) {
	return nil, nil
}

func (fakeDashboard) Events(context.Context) ([]models.Event, error) { return nil, nil }

func newTestBot(imports *fakeImports) (*TelegramBot, *fakeSender) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := &fakeSender{}
	return &TelegramBot{bot: s, imports: imports, dashboard: fakeDashboard{}, admins: []int64{42}, log: log}, s
}

func message(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func TestCommand(t *testing.T) {
	assert.Equal(t, "/summary", command("/summary"))
	assert.Equal(t, "/import", command("/IMPORT@cyber_bot now"))
	assert.Equal(t, "", command("hello"))
	assert.Equal(t, "", command("   "))
}

func TestTelegramBot_RejectsStrangers(t *testing.T) {
	imports := &fakeImports{}
	bot, s := newTestBot(imports)

	bot.handleMessage(context.Background(), message(7, "/import"))
	assert.Empty(t, imports.calls)
	require.Len(t, s.sent, 1)
	assert.Contains(t, s.sent[0].Text, "Доступ только для администраторов")
}

func TestTelegramBot_Commands(t *testing.T) {
	imports := &fakeImports{runs: []models.ImportRun{{
		ID:        uuid.MustParse("abcdef12-0000-4000-8000-000000000000"),
		Trigger:   "schedule",
		Status:    models.ImportSucceeded,
		StartedAt: time.Date(2024, time.May, 3, 14, 30, 0, 0, time.UTC),
	}}}
	bot, s := newTestBot(imports)
	ctx := context.Background()

	bot.handleMessage(ctx, message(42, "/summary"))
	bot.handleMessage(ctx, message(42, "/runs"))
	bot.handleMessage(ctx, message(42, "/import"))
	bot.handleMessage(ctx, message(42, "what"))

	texts := s.texts()
	require.Len(t, texts, 4)
	assert.Contains(t, texts[0], "Мероприятий: 2")
	assert.Contains(t, texts[0], "Команд: 3")
	assert.Equal(t, "03.05.2024 14:30 abcdef12 (schedule): succeeded", texts[1])
	assert.Contains(t, texts[2], "Импорт запущен")
	assert.Contains(t, texts[3], "Неизвестная команда")
	assert.Equal(t, []string{"telegram"}, imports.calls)
}

func TestTelegramBot_ImportFailureIsReported(t *testing.T) {
	imports := &fakeImports{err: service.ErrImportRunning}
	bot, s := newTestBot(imports)

	bot.handleCallback(context.Background(), &tgbotapi.CallbackQuery{ID: "1", Data: "import", Message: message(42, "")})
	texts := s.texts()
	require.Len(t, texts, 2)
	assert.Contains(t, texts[1], "import is already running")
}

func TestTelegramBot_NotifyImport(t *testing.T) {
	bot, s := newTestBot(&fakeImports{})
	bot.admins = []int64{1, 2}

	require.NoError(t, bot.NotifyImport(context.Background(), sampleResult(models.ImportSucceeded)))
	require.Len(t, s.sent, 2)
	assert.Equal(t, int64(1), s.sent[0].ChatID)
	assert.Contains(t, s.sent[1].Text, "Импорт завершен")

	s.err = errors.New("blocked")
	assert.Error(t, bot.NotifyImport(context.Background(), sampleResult(models.ImportSucceeded)))
}
