// Package util has small helpers that the rendering tools and the
// commands share.
package util

import (
	"log"
	"strings"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf calls log.Printf.  The commands set
// it from their -v flags.
var Logging = false

// Logf calls log.Printf if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	log.Printf(format, args...)
}

// Summary returns the first sentence of a doc string if the doc is
// longer than max.  Newlines become spaces.
func Summary(doc string, max int) string {
	doc = strings.TrimSpace(strings.Replace(doc, "\n", " ", -1))
	if len(doc) <= max {
		return doc
	}
	if period := strings.Index(doc, ". "); 0 < period {
		return doc[0 : period+1]
	}
	return doc
}
