package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerCapturesOutput(t *testing.T) {
	defer SetLogger(nil)

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})

	Logf("hello %d", 42)
	if len(got) != 1 || got[0] != "hello 42" {
		t.Errorf("captured = %v", got)
	}
}

func TestDebugfGatedByFlag(t *testing.T) {
	defer SetLogger(nil)
	defer SetDebug(false)

	var count int
	SetLogger(func(string, ...interface{}) { count++ })

	SetDebug(false)
	Debugf("suppressed")
	if count != 0 {
		t.Errorf("debug output not suppressed, count = %d", count)
	}

	SetDebug(true)
	Debugf("emitted")
	if count != 1 {
		t.Errorf("debug output missing, count = %d", count)
	}
}
