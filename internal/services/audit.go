package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"marketplace/internal/models"

	"github.com/mssola/user_agent"
	"gorm.io/gorm"
)

// maxClientLength is the audit_logs.client column size, in characters.
const maxClientLength = 120

const (
	ActionRegister      = "REGISTER"
	ActionLogin         = "LOGIN"
	ActionCreateListing = "CREATE_LISTING"
	ActionDeleteListing = "DELETE_LISTING"
)

// RequestMeta describes the caller of an audited action.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type AuditService struct {
	db      *gorm.DB
	logger  *slog.Logger
	entries chan models.AuditLog
}

func NewAuditService(db *gorm.DB, logger *slog.Logger) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		entries: make(chan models.AuditLog, 100),
	}
}

// Start writes queued entries to the store until ctx is cancelled, then
// flushes whatever is still queued before returning.
func (s *AuditService) Start(ctx context.Context) {
	s.logger.Info("Audit worker starting")
	for {
		select {
		case entry := <-s.entries:
			s.write(entry)
		case <-ctx.Done():
			s.drain()
			s.logger.Info("Audit worker stopping")
			return
		}
	}
}

func (s *AuditService) drain() {
	for {
		select {
		case entry := <-s.entries:
			s.write(entry)
		default:
			return
		}
	}
}

func (s *AuditService) write(entry models.AuditLog) {
	if err := s.db.Create(&entry).Error; err != nil {
		s.logger.Error("Failed to write audit log", "action", entry.Action, "error", err)
	}
}

// LogAction queues an entry without blocking; it is dropped when the queue is full.
func (s *AuditService) LogAction(accountID *string, action, entityID string, details interface{}, meta RequestMeta) {
	if s == nil {
		return
	}

	detailBytes, _ := json.Marshal(details)

	entry := models.AuditLog{
		AccountID: accountID,
		Action:    action,
		EntityID:  entityID,
		Details:   string(detailBytes),
		IPAddress: meta.IPAddress,
		Client:    describeClient(meta.UserAgent),
		Timestamp: time.Now(),
	}

	select {
	case s.entries <- entry:
	default:
		s.logger.Warn("Audit channel full, dropping log", "action", action)
	}
}

func describeClient(raw string) string {
	if raw == "" {
		return ""
	}
	ua := user_agent.New(raw)
	name, version := ua.Browser()
	client := strings.TrimSpace(name + " " + version)
	if os := ua.OS(); os != "" {
		client += " / " + os
	}
	if ua.Bot() {
		client += " (bot)"
	} else if ua.Mobile() {
		client += " (mobile)"
	}
	return truncateRunes(client, maxClientLength)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
