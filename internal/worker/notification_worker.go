package worker

import (
	"github.com/spec-kit/permit-service/internal/service"
)

// StartNotificationWorker registers the notification sink's event handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
