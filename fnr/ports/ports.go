package ports

import "errors"

// ErrNoOperator is returned by ConfirmOverwrite when nobody can answer.
var ErrNoOperator = errors.New("no operator to confirm")

// Interactor is implemented by the presentation layer that drives a repair.
type Interactor interface {
	Output(message string)
	Warning(message string)
	Error(message string, err error)
	StartSpinner(message string)
	StopSpinner(success bool, message string)

	// ConfirmOverwrite asks whether dst may be replaced by src. It returns
	// ErrNoOperator when the question cannot be put to anyone.
	ConfirmOverwrite(src, dst string) (bool, error)
}

// LocaleSource reports the character type locale, e.g. "ko_KR.UTF-8".
type LocaleSource interface {
	Locale() string
}
