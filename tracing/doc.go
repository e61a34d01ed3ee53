// Package tracing records what happens during a regression into a
// datarecording backend.
package tracing
