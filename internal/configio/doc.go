// Package configio holds the plumbing shared by every tab-separated
// configuration parser: a line reader that strips the UTF-8 BOM and trailing
// carriage returns, a field splitter with a per-field callback, and the
// ParseError type that tags a failure with its file type and line number.
package configio
