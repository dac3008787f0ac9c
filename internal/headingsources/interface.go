// Package headingsources normalizes heterogeneous heading inputs into a
// single update shape consumed by the compass engine. Each source runs
// its own receive loop and sends adapter-normalized updates to the
// engine's event channel.
package headingsources

// HeadingSource is an interface that provides standard methods for
// the various heading input backends
type HeadingSource interface {
	StartHeadingSource() error
	SourceName() string
}
