package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to every error a Handler returns.
const (
	TextCodeInvalidCommand = "BLOG_COMMAND_INVALID"
	TextCodeCanceled       = "BLOG_COMMAND_CANCELED"
	TextCodeTimeout        = "BLOG_COMMAND_TIMEOUT"
	TextCodeFailed         = "BLOG_COMMAND_FAILED"
)

// ErrorClass is the go-errors category and text code assigned to a failure.
type ErrorClass struct {
	Category goerrors.Category
	TextCode string
	Message  string
}

// ErrorClassifier maps a domain error to an ErrorClass. Returning false
// leaves the failure in the generic command category.
type ErrorClassifier func(err error) (ErrorClass, bool)

// ClassifyAs returns a classifier assigning class to any error matching one
// of targets through errors.Is.
func ClassifyAs(class ErrorClass, targets ...error) ErrorClassifier {
	return func(err error) (ErrorClass, bool) {
		for _, target := range targets {
			if errors.Is(err, target) {
				return class, true
			}
		}
		return ErrorClass{}, false
	}
}

// FirstClass tries classifiers in order.
func FirstClass(classifiers ...ErrorClassifier) ErrorClassifier {
	return func(err error) (ErrorClass, bool) {
		for _, classify := range classifiers {
			if classify == nil {
				continue
			}
			if class, ok := classify(err); ok {
				return class, true
			}
		}
		return ErrorClass{}, false
	}
}

func categorise(err error, class ErrorClass) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, class.Category, class.Message).WithTextCode(class.TextCode)
}

func invalidCommand(err error) error {
	return categorise(err, ErrorClass{
		Category: goerrors.CategoryValidation,
		TextCode: TextCodeInvalidCommand,
		Message:  "command rejected",
	})
}

func interrupted(err error) error {
	class := ErrorClass{Category: goerrors.CategoryCommand, TextCode: TextCodeCanceled, Message: "command canceled"}
	if errors.Is(err, context.DeadlineExceeded) {
		class.TextCode = TextCodeTimeout
		class.Message = "command timed out"
	}
	return categorise(err, class)
}

func failed(err error, classify ErrorClassifier) error {
	if classify != nil {
		if class, ok := classify(err); ok {
			return categorise(err, class)
		}
	}
	return categorise(err, ErrorClass{
		Category: goerrors.CategoryCommand,
		TextCode: TextCodeFailed,
		Message:  "command failed",
	})
}
