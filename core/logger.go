package core

// Logger is the application logger. args may hold errors, maps of extra data
// and at most one Person to attach to the report.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the authenticated admin behind a logged error.
type Person struct {
	ID    string
	Email string
}
