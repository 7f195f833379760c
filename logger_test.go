package fetchkit

import "testing"

// Light smoke tests ensuring the logger APIs do not panic and remain callable.
func TestSimpleLoggerLevels(t *testing.T) {
	logger := NewSimpleLogger()

	logger.Debug("debug message", "key", "value")
	logger.Info("info message", "n", 1)
	logger.Warn("warn message")
	logger.Error("error message", "dangling")
}

func TestSimpleLoggerReusability(t *testing.T) {
	logger := NewSimpleLogger()
	for i := 0; i < 5; i++ {
		logger.Info("loop message", "i", i)
	}
}
