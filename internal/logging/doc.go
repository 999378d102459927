// Package logging provides leveled logging on top of the standard library
// logger. The level is read once from the DEBUG and LOG_LEVEL environment
// variables; messages below the active level are dropped.
package logging
