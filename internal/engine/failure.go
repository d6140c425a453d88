package engine

import (
	"errors"

	"github.com/dop251/goja"
)

// FailureKind extracts the declared kind name of an execution failure:
// the thrown value's "name" for script throws, or the engine's own
// classification for compile and interrupt errors. Reports false when no
// kind can be determined.
func FailureKind(err error) (string, bool) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		obj, ok := ex.Value().(*goja.Object)
		if !ok {
			return "", false
		}
		name := obj.Get("name")
		if name == nil || goja.IsUndefined(name) || goja.IsNull(name) {
			return "", false
		}
		return name.String(), true
	}

	var stackErr *goja.StackOverflowError
	if errors.As(err, &stackErr) {
		return "StackOverflowError", true
	}
	var interruptErr *goja.InterruptedError
	if errors.As(err, &interruptErr) {
		return "InterruptedError", true
	}
	var syntaxErr *goja.CompilerSyntaxError
	if errors.As(err, &syntaxErr) {
		return "SyntaxError", true
	}
	var refErr *goja.CompilerReferenceError
	if errors.As(err, &refErr) {
		return "ReferenceError", true
	}
	return "", false
}

// FailureMessage extracts the failure's message text: the thrown value's
// "message" when present, the thrown value itself for bare throws, or
// the engine error string otherwise.
func FailureMessage(err error) (string, bool) {
	var ex *goja.Exception
	if errors.As(err, &ex) {
		val := ex.Value()
		if val == nil {
			return "", false
		}
		if obj, ok := val.(*goja.Object); ok {
			if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
				return msg.String(), true
			}
		}
		return val.String(), true
	}
	if err != nil {
		return err.Error(), true
	}
	return "", false
}
