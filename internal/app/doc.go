// Package app contains the hatremote application: it loads the config files
// into an engine setup, and runs the remote server with its health endpoint.
// It is decoupled from the command line, which only builds a Config.
package app
