// Package version contains information on the current version of the
// toolkit. It is split from the main packages for easy use.
package version

// Current is the string representing the current version of esox.
const Current = "0.3.1"
