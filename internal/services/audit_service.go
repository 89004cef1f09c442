package services

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/logger"
	"fittrack/internal/models"
	"fittrack/internal/pagination"
)

// Audit actions.
const (
	AuditRegister        = "REGISTER"
	AuditLogin           = "LOGIN"
	AuditLoginFailed     = "LOGIN_FAILED"
	AuditTwoFactor       = "TWO_FACTOR_VERIFIED"
	AuditTwoFactorChange = "TWO_FACTOR_CHANGED"
	AuditResetRequested  = "PASSWORD_RESET_REQUESTED"
	AuditPasswordReset   = "PASSWORD_RESET"
	AuditLogout          = "LOGOUT"
	AuditProfileUpdate   = "UPDATE_PROFILE"
)

// redacted marks a change value that was dropped before storage.
const redacted = "[REDACTED]"

// secretFields never reach the audit table, whatever a caller passes.
var secretFields = []string{"password", "code", "token", "secret"}

// auditService records authentication and profile events per user.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and swallowed so an
// audit outage never fails a login.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(action, changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// ListForUser returns a user's audit trail, newest first.
func (s *auditService) ListForUser(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	page.Defaults()
	query := s.db.Model(&models.AuditLog{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var entries []models.AuditLog
	if err := query.Order("created_at DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&entries).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(entries, page.Page, page.PageSize, total)
	return &resp, nil
}

func encodeChanges(action string, changes map[string]interface{}) string {
	if changes == nil {
		return ""
	}
	clean := make(map[string]interface{}, len(changes))
	for k, v := range changes {
		if isSecretField(k) {
			v = redacted
		}
		clean[k] = v
	}
	data, err := json.Marshal(clean)
	if err != nil {
		logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}

func isSecretField(key string) bool {
	key = strings.ToLower(key)
	for _, f := range secretFields {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}
