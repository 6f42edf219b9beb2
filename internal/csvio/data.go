package csvio

import (
	"fmt"
	"strings"
	"time"

	"puntuale/internal/meeting"
)

// DataHeader is the header of the full-data dialect.
const DataHeader = "Attività,Tempo Previsto (min),Tempo Effettivo (min),Inizio,Fine"

// DataFormatHint is shown when an import yields no valid row.
const DataFormatHint = "Nessuna attività valida trovata nel file. Controlla il formato del file e che segua la struttura: " + DataHeader

// ParseData decodes the full-data dialect. The name may be quoted (with
// embedded commas) or unquoted up to its first comma; the remainder must
// hold at least planned, actual, start and end fields or the row is
// skipped. A row is Completed when it carries an actual duration or both
// timestamps; otherwise Pending.
func ParseData(text string) []meeting.Activity {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	if strings.HasPrefix(stripQuotes(lines[0]), DataHeader) {
		lines = lines[1:]
	}

	var acts []meeting.Activity
	for _, line := range lines {
		name, rest, ok := splitName(line)
		if !ok || name == "" {
			continue
		}

		parts := strings.Split(rest, ",")
		if len(parts) < 4 {
			continue
		}

		planned := time.Duration(0)
		if mins, ok := leadingInt(parts[0]); ok {
			planned = time.Duration(mins) * time.Minute
		}

		var actual *time.Duration
		if strings.TrimSpace(parts[1]) != "" {
			if mins, ok := leadingInt(parts[1]); ok {
				d := time.Duration(mins) * time.Minute
				actual = &d
			}
		}

		start := ParseTime(parts[2])
		end := ParseTime(parts[3])

		status := meeting.StatusPending
		if actual != nil || (start != nil && end != nil) {
			status = meeting.StatusCompleted
		}

		acts = append(acts, meeting.Activity{
			Name:    name,
			Planned: planned,
			Actual:  actual,
			Start:   start,
			End:     end,
			Status:  status,
		})
	}
	return acts
}

// ExportData encodes the agenda in the full-data dialect: header plus one
// row per activity in store order. The name is always quoted, minutes are
// rounded to the nearest integer and absent fields render empty.
func ExportData(acts []meeting.Activity) []byte {
	rows := make([]string, 0, len(acts)+1)
	rows = append(rows, DataHeader)
	for _, a := range acts {
		actual := ""
		if a.Actual != nil {
			actual = fmt.Sprintf("%d", a.ActualMinutes())
		}
		rows = append(rows, strings.Join([]string{
			quoteField(a.Name),
			fmt.Sprintf("%d", a.PlannedMinutes()),
			actual,
			FormatTime(a.Start),
			FormatTime(a.End),
		}, ","))
	}
	return []byte(bom + strings.Join(rows, "\n"))
}

// DataFilename is the conventional name for a full-data export.
func DataFilename(now time.Time) string {
	return fmt.Sprintf("dati_riunione_%s.csv", now.Format("2006-01-02"))
}
