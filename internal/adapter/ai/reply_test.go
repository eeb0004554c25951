package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanReply(t *testing.T) {
	tests := map[string]string{
		"  72 ":                        "72",
		"```\n85\nGood fit\n```":       "85\nGood fit",
		"```text\n40 weak match\n```":  "40 weak match",
		"**90** strong skills overlap": "90 strong skills overlap",
		"":                             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanReply(in), "%q", in)
	}
}
