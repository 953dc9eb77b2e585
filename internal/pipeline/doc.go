// Package pipeline runs the fixed two-stage chain behind every question.
//
// # Stages
//
// The search stage answers the question from a web search; its output is the
// input of the timestamp stage, whose output is returned to the caller:
//
//	input -> search -> timestamp -> output
//
// Exactly one string flows between stages. There is no routing, retry or
// branching: the first stage error aborts the run and is returned as a
// *StageError naming the stage.
package pipeline
