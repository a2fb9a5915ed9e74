// Package platform delivers desktop notifications through the host's
// notification service.
package platform

import "time"

// AppName identifies the sender to notification services.
const AppName = "cvcanvas"

// DefaultTimeout is how long a notification stays visible when Options
// leaves Timeout unset.
const DefaultTimeout = 5 * time.Second

// Options configure how a notification is displayed.
type Options struct {
	// IconPath points to an image shown with the notification where supported.
	IconPath string
	// Timeout overrides DefaultTimeout where the service honours it.
	Timeout time.Duration
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}
