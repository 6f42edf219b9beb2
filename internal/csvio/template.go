package csvio

import (
	"fmt"
	"strings"
	"time"

	"puntuale/internal/meeting"
)

// TemplateHeader is the optional header of the template dialect.
const TemplateHeader = "Attività,Tempo Previsto (min)"

// ParseTemplate decodes the template dialect into Pending activities
// (ids unassigned; the store allocates them on Append).
//
// With the header present, rows carry a quoted name followed by the
// minutes; without it, rows are minutes-first with an optionally quoted
// name. Rows that don't yield a non-empty name and positive minutes are
// skipped without aborting the rest.
func ParseTemplate(text string) []meeting.Activity {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	hasHeader := strings.HasPrefix(stripQuotes(lines[0]), TemplateHeader)
	if hasHeader {
		lines = lines[1:]
	}

	var acts []meeting.Activity
	for _, line := range lines {
		var name string
		var minutes int
		var numOK bool

		if hasHeader {
			if !strings.HasPrefix(line, `"`) {
				continue
			}
			rest := ""
			var ok bool
			name, rest, ok = splitName(line)
			if !ok {
				continue
			}
			minutes, numOK = leadingInt(strings.SplitN(rest, ",", 2)[0])
		} else {
			comma := strings.IndexByte(line, ',')
			if comma < 0 {
				continue
			}
			minutes, numOK = leadingInt(line[:comma])
			name = unquoteField(strings.TrimSpace(line[comma+1:]))
		}

		if name == "" || !numOK || minutes <= 0 {
			continue
		}
		acts = append(acts, meeting.Activity{
			Name:    name,
			Planned: time.Duration(minutes) * time.Minute,
			Status:  meeting.StatusPending,
		})
	}
	return acts
}

// ExportTemplate encodes the agenda in the template dialect: one
// minutes,name row per activity, no header, UTF-8 BOM.
func ExportTemplate(acts []meeting.Activity) []byte {
	rows := make([]string, 0, len(acts))
	for _, a := range acts {
		rows = append(rows, fmt.Sprintf("%d,%s", a.PlannedMinutes(), quoteField(a.Name)))
	}
	return []byte(bom + strings.Join(rows, "\n"))
}

// TemplateFilename is the conventional name for a template export.
func TemplateFilename(now time.Time) string {
	return fmt.Sprintf("template_riunione_%s.csv", now.Format("2006-01-02"))
}
