// Package extract provides pure pattern-matching over raw observation text:
// paper title and section identification, and struggle-concept detection.
// All functions are deterministic and side-effect-free; an unmatched input
// is a normal outcome, never an error.
package extract

import (
	"regexp"
	"strings"
)

var (
	// --TITLE-- Attention Is All You Need.
	titleRe = regexp.MustCompile(`--TITLE--\s*(.+?)(?:\.|,|$)`)

	// --Methods-- style explicit section markers.
	sectionMarkerRe = regexp.MustCompile(`--(\w+(?:\s+\w+)*?)--`)

	// "moves on to the next section ... Results"
	sectionMoveRe = regexp.MustCompile(`(?i)moves? on to (?:the )?(?:next )?section.*?(?:--)?(\w+(?:\s+\w+)*?)(?:--)?`)

	// "reads the Introduction section", "reading the Methods section"
	sectionReadRe = regexp.MustCompile(`(?i)(?:reads?|reading) (?:the )?(\w+) section`)

	// "in the Discussion section", "at the Results section"
	sectionInRe = regexp.MustCompile(`(?i)\b(?:in|at) (?:the )?(\w+) section`)

	// "pauses at the word 'entropy'"
	pauseWordRe = regexp.MustCompile(`pauses at the word '(\w+)'`)

	// "re-reads the sentence about backpropagation"
	rereadTargetRe = regexp.MustCompile(`(?:sentence|paragraph) (?:about|containing|with) (\w+)`)

	// "writes down 'what is attention?'", "types why does this converge!"
	questionRe = regexp.MustCompile(`(?:writes?|types?) (?:down )?["']?(.+?)["']?(?:\?|!)`)

	// key terms inside a written question
	questionTermRe = regexp.MustCompile(`(?i)\b(?:what is|what are|why|how does?)\s+(\w+)`)
)

// ExtractContext pulls the paper title and section name out of an
// observation, if present. Section patterns are tried in priority order and
// the first match wins; there is no merging across patterns. Either return
// value may be empty.
func ExtractContext(text string) (title, section string) {
	if m := titleRe.FindStringSubmatch(text); m != nil {
		title = strings.TrimSpace(m[1])
	}

	// The --TITLE-- marker shares the section marker syntax; skip it.
	for _, m := range sectionMarkerRe.FindAllStringSubmatch(text, -1) {
		if m[1] != "TITLE" {
			return title, strings.TrimSpace(m[1])
		}
	}
	for _, re := range []*regexp.Regexp{sectionMoveRe, sectionReadRe, sectionInRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			return title, strings.TrimSpace(m[1])
		}
	}
	return title, ""
}

// ExtractStruggleConcepts detects concepts the reader appears to be
// struggling with. Three cues are checked independently and may all fire on
// the same observation: an explicit pause at a word, a re-reading pattern
// with an identifiable target, and key terms from a written question.
func ExtractStruggleConcepts(text string) []string {
	var concepts []string

	if m := pauseWordRe.FindStringSubmatch(text); m != nil {
		concepts = append(concepts, m[1])
	}

	if strings.Contains(text, "re-read") {
		if m := rereadTargetRe.FindStringSubmatch(text); m != nil {
			concepts = append(concepts, m[1])
		}
	}

	if m := questionRe.FindStringSubmatch(text); m != nil {
		for _, term := range questionTermRe.FindAllStringSubmatch(m[1], -1) {
			concepts = append(concepts, term[1])
		}
	}

	return concepts
}
