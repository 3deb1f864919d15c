package core

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// ErrorLogger is a Logger that reports failures on a separate channel
type ErrorLogger interface {
	Logger
	Errorf(format string, args ...interface{})
}

// LogError writes through Errorf when logger supports it and Printf otherwise
func LogError(logger Logger, format string, args ...interface{}) {
	if el, ok := logger.(ErrorLogger); ok {
		el.Errorf(format, args...)
		return
	}
	logger.Printf(format, args...)
}
