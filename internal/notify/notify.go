// Package notify abstracts the notification side effect raised when a
// response finishes while the user is looking elsewhere.
package notify

// Permission is the user's answer to a notification permission request.
type Permission string

const (
	// PermissionGranted allows notifications.
	PermissionGranted Permission = "granted"
	// PermissionDenied forbids notifications.
	PermissionDenied Permission = "denied"
	// PermissionDefault means the user has not been asked yet.
	PermissionDefault Permission = "default"
)

// Notifier delivers notifications.
type Notifier interface {
	// RequestPermission prompts for permission and returns the outcome.
	RequestPermission() Permission
	// Permission returns the current permission without prompting.
	Permission() Permission
	// Notify delivers a notification. Callers gate on permission and on the
	// user's notification preference.
	Notify(title, body string)
}

// Nop is a Notifier that grants permission and drops notifications. Used as
// a default and in tests.
type Nop struct {
	// Notified records delivered notifications.
	Notified []string
}

// RequestPermission implements Notifier.
func (n *Nop) RequestPermission() Permission { return PermissionGranted }

// Permission implements Notifier.
func (n *Nop) Permission() Permission { return PermissionGranted }

// Notify implements Notifier.
func (n *Nop) Notify(title, body string) {
	n.Notified = append(n.Notified, title+": "+body)
}
