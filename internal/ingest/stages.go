package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// headingLinePattern matches a line that looks like a chapter-list entry:
// a chapter word followed by a number. Shared by the embedded-TOC filter and
// the paragraph heading scan.
var headingLinePattern = regexp.MustCompile(`(?i)^(?:chapter|bab|vol(?:ume)?|part|episode|bagian)\b[\s.:\-]*[0-9]`)

// chapterIndexPattern extracts the printed chapter number from a title. The
// number may carry a decimal part (interlude chapters like "Chapter 12.5").
var chapterIndexPattern = regexp.MustCompile(`(?i)\b(?:chapter|bab|ep|part)\b[\s.:\-]*([0-9]+(?:\.[0-9]+)?)`)

// prologueMarkers force a chapter index of zero regardless of any number in
// the title.
var prologueMarkers = []string{"prologue", "intro", "pendahuluan"}

// navAnchorTexts are link labels that identify navigation anchors to remove
// from chapter bodies.
var navAnchorTexts = map[string]bool{
	"prev":       true,
	"next":       true,
	"previous":   true,
	"contents":   true,
	"daftar isi": true,
	"index":      true,
}

// containerNoiseMarkers identify wrapper elements to drop by id or class.
var containerNoiseMarkers = []string{"intro", "footer", "nav"}

// workItem is the per-item record the stage chain operates on.
type workItem struct {
	// href is the item path inside the container.
	href string
	// fileName is the lower-cased base name of href.
	fileName string
	// doc is the parsed markup tree; body points at its <body>.
	doc  *html.Node
	body *html.Node
	// text is the plain-text rendering of the body as of the last refresh.
	text string
	// title is the chosen chapter title once extraction has run.
	title string
	// novelTitle is the (possibly just backfilled) owning novel title.
	novelTitle string
}

// stage is one named step of the segmentation filter chain. A stage may
// transform the work item, reject it with a reason, or both.
type stage struct {
	name string
	run  func(*Segmenter, *workItem) (skipReason string)
}

// segmentStages is the ordered filter chain applied to every document item.
// The order is load-bearing: title extraction mutates the tree the length
// check measures, and the self-title filter needs the extracted title.
var segmentStages = []stage{
	{"filename-blacklist", (*Segmenter).filterFilenameBlacklist},
	{"toc-density", (*Segmenter).filterTOCDensity},
	{"clean-markup", (*Segmenter).cleanMarkup},
	{"extract-title", (*Segmenter).extractTitle},
	{"title-blacklist", (*Segmenter).filterTitleBlacklist},
	{"self-title", (*Segmenter).filterSelfTitle},
	{"min-length", (*Segmenter).filterMinLength},
}

// filterFilenameBlacklist drops items whose filename marks them as front
// matter or navigation, unless a rescue marker shows the file is a real
// chapter that merely contains a blacklisted substring.
func (s *Segmenter) filterFilenameBlacklist(it *workItem) string {
	marker := containsAny(it.fileName, s.opts.FilenameBlacklist)
	if marker == "" {
		return ""
	}
	if rescue := containsAny(it.fileName, s.opts.RescueMarkers); rescue != "" {
		return ""
	}
	return fmt.Sprintf("filename contains %q", marker)
}

// filterTOCDensity drops items whose body is mostly chapter-list lines: an
// embedded table of contents rather than a chapter.
func (s *Segmenter) filterTOCDensity(it *workItem) string {
	lines := nonEmptyLines(it.text)
	if len(lines) > s.opts.TOCScanLines {
		lines = lines[:s.opts.TOCScanLines]
	}
	entries := 0
	for _, line := range lines {
		if headingLinePattern.MatchString(line) {
			entries++
		}
	}
	if entries > s.opts.TOCEntryThreshold {
		return fmt.Sprintf("%d of first %d lines look like chapter-list entries", entries, len(lines))
	}
	return ""
}

// cleanMarkup strips non-content nodes from the item tree: script/style/meta/
// link elements, wrappers identified as intro/footer/nav by id or class, and
// navigation anchors. Never skips.
func (s *Segmenter) cleanMarkup(it *workItem) string {
	doomed := collectNodes(it.doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		if strippedAtoms[n.DataAtom] {
			return true
		}
		if n.DataAtom == atom.A && navAnchorTexts[strings.ToLower(strings.TrimSpace(nodeText(n)))] {
			return true
		}
		if n.DataAtom != atom.Body && n.DataAtom != atom.Html && attrContainsAny(n, containerNoiseMarkers) {
			return true
		}
		return false
	})
	for _, n := range doomed {
		detachNode(n)
	}
	it.text = nodeText(it.body)
	return ""
}

// extractTitle picks the chapter title and removes its node from the tree so
// the title does not repeat inside the body. Preference order: first heading
// element, then the document <title>, then a chapter-looking line among the
// leading paragraphs, finally the raw item filename.
func (s *Segmenter) extractTitle(it *workItem) string {
	if heading := firstTitleNode(it.doc); heading != nil {
		it.title = strings.TrimSpace(nodeText(heading))
		detachNode(heading)
		it.text = nodeText(it.body)
		if it.title != "" {
			return ""
		}
	}

	paragraphs := collectNodes(it.body, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.P
	})
	if len(paragraphs) > s.opts.HeadingScanParagraphs {
		paragraphs = paragraphs[:s.opts.HeadingScanParagraphs]
	}
	for _, p := range paragraphs {
		text := strings.TrimSpace(nodeText(p))
		if headingLinePattern.MatchString(text) {
			it.title = text
			detachNode(p)
			it.text = nodeText(it.body)
			return ""
		}
	}

	if it.title == "" {
		it.title = baseName(it.href)
	}
	return ""
}

// firstTitleNode returns the first heading element in the body, or the
// document <title> when the body has no headings.
func firstTitleNode(doc *html.Node) *html.Node {
	var heading *html.Node
	body := findBody(doc)
	walkNodes(body, func(n *html.Node) bool {
		if n.Type == html.ElementNode && headingAtoms[n.DataAtom] {
			heading = n
			return false
		}
		return true
	})
	if heading != nil {
		return heading
	}
	walkNodes(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			heading = n
			return false
		}
		return true
	})
	return heading
}

// filterTitleBlacklist re-applies the noise blacklist to the chosen title.
// A title mentioning "chapter" is trusted even when it also carries a
// blacklisted phrase.
func (s *Segmenter) filterTitleBlacklist(it *workItem) string {
	lowered := strings.ToLower(it.title)
	marker := containsAny(lowered, s.opts.FilenameBlacklist)
	if marker == "" || strings.Contains(lowered, "chapter") {
		return ""
	}
	return fmt.Sprintf("title contains %q", marker)
}

// filterSelfTitle drops an item whose title is the novel's own title, which is
// almost always a title or cover page rather than a chapter.
func (s *Segmenter) filterSelfTitle(it *workItem) string {
	novelTitle := strings.TrimSpace(it.novelTitle)
	if novelTitle == "" {
		return ""
	}
	if strings.EqualFold(strings.TrimSpace(it.title), novelTitle) {
		return "title matches the novel title"
	}
	return ""
}

// filterMinLength drops items whose cleaned body is too short to be a real
// chapter.
func (s *Segmenter) filterMinLength(it *workItem) string {
	if length := utf8.RuneCountInString(strings.TrimSpace(it.text)); length < s.opts.MinBodyChars {
		return fmt.Sprintf("cleaned body has %d characters of text", length)
	}
	return ""
}

// parseChapterIndex extracts the printed chapter number from a title, falling
// back to the reading-order position. Prologue-style titles always map to
// index zero.
func parseChapterIndex(title string, seq int) float64 {
	lowered := strings.ToLower(title)
	for _, marker := range prologueMarkers {
		if strings.Contains(lowered, marker) {
			return 0
		}
	}
	if match := chapterIndexPattern.FindStringSubmatch(title); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			return value
		}
	}
	return float64(seq)
}

// containsAny returns the first marker contained in value, or "".
func containsAny(value string, markers []string) string {
	for _, marker := range markers {
		if marker != "" && strings.Contains(value, marker) {
			return marker
		}
	}
	return ""
}

func baseName(href string) string {
	href = strings.TrimRight(href, "/")
	if idx := strings.LastIndexAny(href, "/\\"); idx >= 0 {
		href = href[idx+1:]
	}
	return href
}
