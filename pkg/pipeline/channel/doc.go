// Package channel provides the single-producer, single-consumer conduit stages use to talk to each other.
//
// A Channel carries opaque byte messages from exactly one Writer to exactly one Reader. Messages are delivered in
// the order they were pushed. Closing the Writer appends a terminal marker: the Reader still drains every message
// pushed before the close and only then observes io.EOF.
//
// The same queue can be consumed in two ways. Reader.Read blocks until a message or the closure is available,
// while Reader.Subscribe starts a background loop which pushes every message to an Observer followed by exactly one
// terminal event. Both share the ordering and closure guarantees of the queue.
//
// A bounded channel suspends its Writer when the buffer is full instead of dropping messages. Channel.Shutdown
// unblocks both sides during teardown.
package channel
