package querybuilder

import "log/slog"

type Option func(*Builder)

// WithLogger sets the logger compiled and executed statements are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithLog makes the builder record into l instead of a log of its own.
func WithLog(l *Log) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithInlineValues compiles values as SQL literals instead of placeholders.
// Only use it for statements whose values are trusted.
func WithInlineValues() Option {
	return func(b *Builder) {
		b.inline = true
	}
}

func WithDefaultLimit(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.defaultLimit = n
		}
	}
}
