package cargo

import (
	"regexp"
	"strings"
)

// tableMatcher selects the table whose version line is rewritten. table is
// the header as written, e.g. "[package]"; pkg is the table's name value
// seen so far.
type tableMatcher func(table, pkg string) bool

var (
	versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)("[^"]*"|'[^']*')(.*)$`)
	nameLine    = regexp.MustCompile(`^\s*name\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

func isPackageTable(table, _ string) bool {
	return table == "[package]"
}

// setVersion replaces the first version string inside a table match
// accepts. Quoting style and trailing comments are kept.
func setVersion(src, version string, match tableMatcher) (string, bool) {
	lines := strings.SplitAfter(src, "\n")
	table, pkg := "", ""

	for i, line := range lines {
		body := strings.TrimRight(line, "\r\n")
		eol := line[len(body):]

		if header, ok := tableHeader(body); ok {
			table, pkg = header, ""
			continue
		}
		if m := nameLine.FindStringSubmatch(body); m != nil {
			pkg = m[1] + m[2]
			continue
		}

		m := versionLine.FindStringSubmatch(body)
		if m == nil || !match(table, pkg) {
			continue
		}
		quote := m[2][:1]
		lines[i] = m[1] + quote + version + quote + m[3] + eol
		return strings.Join(lines, ""), true
	}
	return src, false
}

// tableHeader returns the [table] or [[array]] header on line, without any
// trailing comment.
func tableHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return "", false
	}
	if i := strings.Index(trimmed, "#"); i >= 0 {
		trimmed = strings.TrimSpace(trimmed[:i])
	}
	return trimmed, true
}
