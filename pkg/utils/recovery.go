package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error
type PanicError struct {
	Value      any
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func recovered(r any) *PanicError {
	stack := string(debug.Stack())
	slog.Error("Recovered from panic", "panic", r, "stack", stack)
	return &PanicError{Value: r, StackTrace: stack}
}

// RecoverAsError recovers from a panic and stores it in *errPtr.
// Call it with defer at the top of a function with a named error result:
//
//	func rank() (err error) {
//	    defer RecoverAsError(&err)
//	    ...
//	}
func RecoverAsError(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = recovered(r)
	}
}

// RecoverWithCallback recovers from a panic and passes it to callback.
func RecoverWithCallback(callback func(error)) {
	if r := recover(); r != nil {
		err := recovered(r)
		if callback != nil {
			callback(err)
		}
	}
}

// SafeGo runs fn in a goroutine. A panic is logged and handed to onError.
func SafeGo(fn func(), onError func(error)) {
	go func() {
		defer RecoverWithCallback(onError)
		fn()
	}()
}
