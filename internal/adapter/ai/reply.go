package ai

import (
	"regexp"
	"strings"
)

var (
	fenceRe    = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	emphasisRe = regexp.MustCompile(`\*\*([^*]+)\*\*`)
)

// CleanReply removes markdown code fences and bold markers some models wrap
// around short answers.
func CleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	if m := fenceRe.FindStringSubmatch(reply); m != nil {
		reply = m[1]
	}
	reply = emphasisRe.ReplaceAllString(reply, "$1")
	return strings.TrimSpace(reply)
}
