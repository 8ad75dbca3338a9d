// Package pipeline runs a set of stages connected by channels, in a single process.
//
// Channels are created with AddChannel and their endpoints are handed to stages through the arguments given to
// AddStage. Each Writer and each Reader belongs to exactly one stage, and every channel must link a producer to a
// consumer. The stages must form a directed acyclic graph.
//
// Run calls Setup on every stage, then Exec on every stage concurrently. A stage consumes its inputs until it
// observes their closure, then closes its outputs, so closure flows from the sources down to the sinks and the run
// ends when every stage has returned.
//
// The pipeline stops on the first error: the run context is cancelled and every channel is shut down, which wakes
// up any stage blocked on a read or a push. Errors are prefixed with the name of the stage that reported them.
//
// Options implementing model.PipelineOption observe the run. The measure package records how long stages wait on
// their channels, and the drawer package renders the wired graph.
package pipeline
