package notify

import "errors"

var (
	ErrInvalidConfig       = errors.New("notify: invalid configuration")
	ErrInvalidCatalog      = errors.New("notify: invalid plan catalog")
	ErrUnknownNotification = errors.New("notify: unknown notification type")
	ErrRenderFailed        = errors.New("notify: failed to render notification")
	ErrSendFailed          = errors.New("notify: failed to send notification")
)
