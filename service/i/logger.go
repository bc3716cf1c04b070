package i

// Logger is the levelled logger every role and service writes to.
type Logger interface {
	Info(msg string)
	Warning(msg string)
	Error(msg string)
	Debug(msg string)
}

// NopLogger drops every line.
type NopLogger struct{}

func (NopLogger) Info(string)    {}
func (NopLogger) Warning(string) {}
func (NopLogger) Error(string)   {}
func (NopLogger) Debug(string)   {}
