package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZerologMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerolog("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
	l.Infow("structured", map[string]any{"k": 1})
}

func TestNewReturnsLogger(t *testing.T) {
	assert.NotNil(t, New("component"))
}

func TestNopLoggerIsSilent(t *testing.T) {
	var l Logger = Nop{}
	l.Debugf("debug")
	l.Infof("info")
	l.Warnf("warn")
	l.Errorf("error")
	l.Infow("msg", nil)
}
