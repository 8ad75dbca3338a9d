// Package processors provides ready to use stages.
//
// Every stage reads its input channels until they close and closes its outputs before returning, so stages can be
// chained in any order. Messages are decimal integers written as text, except for Script which forwards whatever
// its Lua function returns.
package processors
