package form

import "context"

// ActionFunc runs when the user activates an action
type ActionFunc func(ctx context.Context) error

// View is the handle a controller uses to drive the record view
type View interface {
	// AddAction offers a user action labelled label
	AddAction(label string, fn ActionFunc)

	// Freeze disables interaction and shows message until Unfreeze
	Freeze(message string)

	// Unfreeze re-enables interaction
	Unfreeze()

	// Reload fetches the record again and re-renders the view
	Reload(ctx context.Context) error

	// ShowError surfaces err to the user
	ShowError(err error)
}
