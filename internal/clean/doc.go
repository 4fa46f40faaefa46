// Package clean removes artifacts a packaging run may have left behind: the
// output directory, the registry storage directory, and the temporary
// credential file when it was written by this tool.
package clean
