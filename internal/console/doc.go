// Package console renders trafficgen's human facing terminal output: the
// startup banner and, in debug mode, a line-by-line trace of every hop.
//
// Tracer implements browse.Observer. Colors come from fatih/color and can
// be turned off per writer, which tests and non-terminal outputs rely on.
package console
