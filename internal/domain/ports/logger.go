package ports

// Logger is the structured logging port used by services and adapters.
// The zap-backed implementation lives in pkg/security so that payout
// account fields can be redacted in one place.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is one structured log attribute.
type Field struct {
	Key   string
	Value interface{}
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Err wraps an error under the conventional "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
