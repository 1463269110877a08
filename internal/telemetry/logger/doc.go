// Package logger provides structured logging for pwdless.
//
// It wraps zap behind a small key/value Logger interface:
//
//   - logger.go: Logger interface, configuration, global level and default logger
//   - zap.go: zap core construction and key/value to field conversion
//   - context.go: context propagation of the logger and operation IDs
//   - redact.go: masking of secrets and password digests
//
// When Config.File is set output is written through lumberjack with size
// and age based rotation.
package logger
