package saft

import (
	"fmt"
	"strings"
	"time"
)

// Filename builds the export file name:
// SAFT_{type}_{period}_{company}_{timestamp}.xml
func Filename(fileType, periodID, companyName string, ts time.Time) string {
	return fmt.Sprintf("SAFT_%s_%s_%s_%s.xml",
		fileType, periodID, sanitize(companyName), ts.Format("20060102_150405"))
}

// sanitize strips characters that are unsafe in file names.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
