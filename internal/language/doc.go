// Package language normalizes recognition language codes.
//
// A small built-in table covers the common codes, their ISO 639-2 forms and
// English words ("german"); anything else falls back to CLDR data from
// golang.org/x/text so that any language the recognizer supports can be named.
package language
