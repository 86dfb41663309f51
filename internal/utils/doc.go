// Package utils exposes reusable helpers consumed by both guardrails commands.
//
// It houses ConfigurationLoader and LoggerFactory abstractions that integrate
// Viper, environment variables, zap logging, and rotating audit log files, as
// well as the UsageError type shared by the command-line entry points.
package utils
