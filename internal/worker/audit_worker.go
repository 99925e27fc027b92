package worker

import (
	"github.com/spec-kit/crm-service/internal/service"
)

// StartAuditWorker subscribes the audit log to identity lifecycle events.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
