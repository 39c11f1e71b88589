package analysis

import "context"

// Variant of a notification, mirrors the toast styles of the page
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient user-facing message
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Fixed templates. The failure text never carries the underlying error.
var (
	SuccessNotification = Notification{
		Title:       "Analysis Complete",
		Description: "Your smart contract has been successfully analyzed.",
		Variant:     VariantDefault,
	}
	FailureNotification = Notification{
		Title:       "Error",
		Description: "Failed to analyze the smart contract. Please try again.",
		Variant:     VariantDestructive,
	}
	CopiedNotification = Notification{
		Title:       "Copied!",
		Description: "Embed code has been copied to your clipboard.",
		Variant:     VariantDefault,
	}
)

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Notifiers fans a notification out to every member.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, n Notification) {
	for _, x := range ns {
		if x != nil {
			x.Notify(ctx, n)
		}
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }
