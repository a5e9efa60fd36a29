package mocks

import "github.com/kurniadi/booking-service/internal/domain/ports"

// MockLogger records log calls so tests can run services without a
// real zap backend. Entries are kept in call order across all levels.
type MockLogger struct {
	Entries []LogEntry
}

// LogEntry is one captured log call.
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) log(level, msg string, fields []ports.Field) {
	m.Entries = append(m.Entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

func (m *MockLogger) Debug(msg string, fields ...ports.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...ports.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...ports.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...ports.Field) { m.log("error", msg, fields) }
