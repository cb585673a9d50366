package core

// Actor identifies the authenticated principal on whose behalf an
// operation ran; loggers may attach it to error reports.
type Actor struct {
	ID    string
	Email string
	Role  string
}

// Logger is any leveled logger service.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
