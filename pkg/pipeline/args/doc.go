// Package args holds the resolved arguments of a stage and binds them to typed Go values.
//
// A Store is built once by whoever wires the pipeline and never changes afterwards. Each entry is a Value, a tagged
// variant which can hold a scalar, a timestamp, a list, a nested Store or a channel endpoint. Stages read their
// arguments through a Binder with Require and Optional. A missing required argument or a value of the wrong kind is
// reported as a *ConfigError, the stage must then refuse to start.
package args
