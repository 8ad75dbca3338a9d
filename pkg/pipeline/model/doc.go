// Package model provides the data structures shared by the pipeline runner and its options.
// It describes the wired stages and channels, and defines the hooks an option receives while a pipeline runs.
package model
