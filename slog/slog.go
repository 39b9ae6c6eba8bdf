// Package slog provides decorators that log calls to docrag services.
package slog
