package observability

var NewTestLogger = newLogger
