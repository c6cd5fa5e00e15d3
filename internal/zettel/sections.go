package zettel

import "regexp"

// headingRe matches an ATX heading line (1-6 leading `#` plus a space and
// the heading text), used to split a note body into ordered sections.
var headingRe = regexp.MustCompile(`(?m)(#{1,6} .+?)\n`)

// SplitSections splits body on ATX headings into an ordered slice of
// sections. Any content before the first heading (preamble) is discarded.
// A body with no headings at all yields a single section with an empty
// heading and the whole body.
func SplitSections(body string) []Section {
	locs := headingRe.FindAllStringSubmatchIndex(body, -1)
	if len(locs) == 0 {
		return []Section{{Heading: "", Body: body}}
	}

	var sections []Section

	for i, loc := range locs {
		headingStart, headingEnd := loc[2], loc[3]
		heading := body[headingStart:headingEnd]
		bodyStart := loc[1]
		bodyEnd := len(body)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}
		sections = append(sections, Section{Heading: heading, Body: body[bodyStart:bodyEnd]})
	}
	return sections
}

// JoinSections renders sections back into a single markdown body, in
// order, with each heading immediately followed by its body text.
func JoinSections(sections []Section) string {
	var out string
	for _, s := range sections {
		if s.Heading != "" {
			out += s.Heading + "\n"
		}
		out += s.Body
	}
	return out
}
