package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"github.com/household-apps/todo-service/internal/config"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/repository"
)

// ReminderService periodically sweeps every active household for overdue and
// soon-due tasks and delivers a digest. Delivery goes to Telegram when a bot
// token is configured, otherwise to the log.
type ReminderService struct {
	householdRepo repository.HouseholdRepository
	taskRepo      repository.TaskRepository
	bot           *tgbotapi.BotAPI
	chatID        int64
	schedule      string
	cron          *cron.Cron
}

// NewReminderService creates a new ReminderService. A missing bot token is
// not an error; digests then go to the log only.
func NewReminderService(cfg *config.Config, householdRepo repository.HouseholdRepository, taskRepo repository.TaskRepository) (*ReminderService, error) {
	s := &ReminderService{
		householdRepo: householdRepo,
		taskRepo:      taskRepo,
		chatID:        cfg.TelegramChatID,
		schedule:      cfg.ReminderSchedule,
		cron:          cron.New(),
	}

	if cfg.TelegramBotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return nil, fmt.Errorf("failed to init telegram bot: %w", err)
		}
		s.bot = bot
	}

	return s, nil
}

// Start registers the sweep on its cron schedule and starts the scheduler
func (s *ReminderService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}
	s.cron.Start()
	log.Printf("Reminder sweep scheduled (%s)", s.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *ReminderService) sweep() {
	households, err := s.householdRepo.ListActive()
	if err != nil {
		log.Printf("reminder sweep: failed to list households: %v", err)
		return
	}

	now := time.Now()
	for _, household := range households {
		overdue, err := s.taskRepo.ListOverdue(household.ID, now)
		if err != nil {
			log.Printf("reminder sweep: household %s: %v", household.ID, err)
			continue
		}
		dueSoon, err := s.taskRepo.ListDueBetween(household.ID, now, now.Add(24*time.Hour))
		if err != nil {
			log.Printf("reminder sweep: household %s: %v", household.ID, err)
			continue
		}

		if len(overdue) == 0 && len(dueSoon) == 0 {
			continue
		}

		s.deliver(buildDigest(household.Name, overdue, dueSoon))
	}
}

// buildDigest renders one household's reminder message
func buildDigest(householdName string, overdue, dueSoon []models.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task reminders for %s\n", householdName)

	if len(overdue) > 0 {
		fmt.Fprintf(&b, "\nOverdue (%d):\n", len(overdue))
		for _, task := range overdue {
			fmt.Fprintf(&b, "- %s (due %s)\n", task.Title, task.DueDate.Format("2006-01-02 15:04"))
		}
	}
	if len(dueSoon) > 0 {
		fmt.Fprintf(&b, "\nDue within 24 hours (%d):\n", len(dueSoon))
		for _, task := range dueSoon {
			fmt.Fprintf(&b, "- %s (due %s)\n", task.Title, task.DueDate.Format("2006-01-02 15:04"))
		}
	}

	return b.String()
}

func (s *ReminderService) deliver(text string) {
	if s.bot == nil || s.chatID == 0 {
		log.Printf("reminder digest:\n%s", text)
		return
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		log.Printf("reminder sweep: failed to send telegram message: %v", err)
	}
}
