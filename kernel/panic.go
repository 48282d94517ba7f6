package kernel

import "sv39vm/kernel/klog"

var (
	// panicFn can be mocked by tests and is automatically inlined by the compiler.
	panicFn = realPanic

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic logs the supplied error (if not nil) and halts execution. In the
// freestanding original this halts the CPU; in this hosted module the
// faithful analogue of "the kernel is unrecoverable from here" is Go's own
// panic, so Panic logs and then calls panic().
func Panic(e interface{}) {
	panicFn(e)
}

func realPanic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		err = errRuntimePanic
	case nil:
		err = nil
	}

	klog.Printf("-----------------------------------")
	if err != nil {
		klog.Printf("[%s] unrecoverable error: %s", err.Module, err.Message)
	}
	klog.Printf("*** kernel panic: system halted ***")
	klog.Printf("-----------------------------------")

	if err != nil {
		panic(err)
	}
	panic("kernel panic")
}
