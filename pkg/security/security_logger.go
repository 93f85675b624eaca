package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names a security-relevant occurrence
type EventType string

const (
	EventLoginFailed        EventType = "login_failed"
	EventLoginBlocked       EventType = "login_blocked"
	EventLoginSuccess       EventType = "login_success"
	EventLoginInactive      EventType = "login_inactive_account"
	EventRegistered         EventType = "account_registered"
	EventConfirmed          EventType = "account_confirmed"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventForbiddenAccess    EventType = "forbidden_access"
	EventBlockCreated       EventType = "block_created"
)

// SecurityEvent is one structured audit line
type SecurityEvent struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "user_id"
	SubjectValue string // masked or hashed
	IP           string
	UserAgent    string
	RequestID    string
	Details      map[string]interface{}
}

// SecurityLogger writes security events through a dedicated zap logger
type SecurityLogger struct {
	zapLogger *zap.Logger
}

var defaultLogger = NewSecurityLogger(zap.NewNop())

// NewSecurityLogger scopes base under the "security" logger name
func NewSecurityLogger(base *zap.Logger) *SecurityLogger {
	return &SecurityLogger{zapLogger: base.Named("security")}
}

// SetDefault replaces the process-wide logger returned by DefaultLogger
func SetDefault(sl *SecurityLogger) {
	defaultLogger = sl
}

func DefaultLogger() *SecurityLogger {
	return defaultLogger
}

func levelFor(event EventType) zapcore.Level {
	switch event {
	case EventLoginSuccess, EventRegistered, EventConfirmed:
		return zapcore.InfoLevel
	case EventLoginBlocked, EventBlockCreated, EventUnauthorizedAccess:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

func (sl *SecurityLogger) Log(_ context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("event", string(event.Event)),
		zap.Time("event_time", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields,
			zap.String("subject_type", event.SubjectType),
			zap.String("subject_value", event.SubjectValue),
		)
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	sl.zapLogger.Log(levelFor(event.Event), string(event.Event), fields...)
}

func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, userAgent, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
	})
}

// LogAccount records account lifecycle events (login success, registration, confirmation)
func (sl *SecurityLogger) LogAccount(ctx context.Context, event EventType, userID, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           ip,
		RequestID:    requestID,
	})
}

func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogAccessDenied records a 401/403 on a protected route
func (sl *SecurityLogger) LogAccessDenied(ctx context.Context, event EventType, userID, ip, requestID, path string) {
	sl.Log(ctx, SecurityEvent{
		Event:        event,
		SubjectType:  "user_id",
		SubjectValue: HashValue(userID),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"path": path},
	})
}

func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, email, ip, requestID string, duration time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"duration_minutes": int(duration.Minutes())},
	})
}

// MaskEmail keeps the first character and the domain, e.g. "j***@example.com"
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	switch {
	case len(email) < 3:
		return "***"
	case at <= 1:
		return "***" + email[1:]
	default:
		return email[:1] + "***" + email[at:]
	}
}

// HashValue returns a short SHA256 prefix so identifiers can be correlated without being logged
func HashValue(value string) string {
	if value == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
