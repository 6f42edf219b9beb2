package csvio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"puntuale/internal/meeting"
)

func localTime(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, time.Local)
}

func dur(d time.Duration) *time.Duration { return &d }

// ============================================================
// Italian datetime convention
// ============================================================

func TestParseTime(t *testing.T) {
	tests := []struct {
		in   string
		want *time.Time
	}{
		{"", nil},
		{"-", nil},
		{"  -  ", nil},
		{"31/12/2026 14:05:09", ptr(localTime(2026, 12, 31, 14, 5, 9))},
		{"01/02/2026 08:30", ptr(localTime(2026, 2, 1, 8, 30, 0))}, // seconds optional
		{"5/3/2026 9:07:01", ptr(localTime(2026, 3, 5, 9, 7, 1))},
		{"31/12/2026", nil},        // no time part
		{"31-12-2026 14:05", nil},  // wrong separators
		{"aa/bb/cccc 14:05", nil},  // non-numeric
		{"31/12/2026 14", nil},     // minutes required
	}
	for _, tt := range tests {
		got := ParseTime(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("ParseTime(%q) = %v, want nil", tt.in, got)
		case tt.want != nil && (got == nil || !got.Equal(*tt.want)):
			t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestFormatTimeRoundTrip(t *testing.T) {
	in := localTime(2026, 1, 9, 7, 3, 59)
	s := FormatTime(&in)
	if s != "09/01/2026 07:03:59" {
		t.Fatalf("formatted = %q", s)
	}
	back := ParseTime(s)
	if back == nil || !back.Equal(in) {
		t.Fatalf("round trip = %v", back)
	}
	if FormatTime(nil) != "" {
		t.Fatal("nil should format as empty")
	}
}

// ============================================================
// Template dialect
// ============================================================

func TestParseTemplateHeaderless(t *testing.T) {
	text := "10,Introduzione\n5,\"Budget, revisione\"\n0,Scartata\nsenza virgola\n,15\n"
	acts := ParseTemplate(text)

	if len(acts) != 2 {
		t.Fatalf("expected 2 activities, got %d", len(acts))
	}
	if acts[0].Name != "Introduzione" || acts[0].Planned != 10*time.Minute {
		t.Fatalf("first = %+v", acts[0])
	}
	if acts[1].Name != "Budget, revisione" || acts[1].Planned != 5*time.Minute {
		t.Fatalf("second = %+v", acts[1])
	}
	for _, a := range acts {
		if a.Status != meeting.StatusPending {
			t.Fatalf("imported template rows must be pending, got %s", a.Status)
		}
	}
}

func TestParseTemplateWithHeader(t *testing.T) {
	text := strings.Join([]string{
		TemplateHeader,
		`"Introduzione",10`,
		`"Virgole, ovunque",5`,
		`"Citazione "" doppia",3`,
	}, "\n")
	acts := ParseTemplate(text)

	if len(acts) != 3 {
		t.Fatalf("expected 3 activities, got %d", len(acts))
	}
	if acts[1].Name != "Virgole, ovunque" {
		t.Fatalf("quoted comma name = %q", acts[1].Name)
	}
	if acts[2].Name != `Citazione " doppia` {
		t.Fatalf("escaped quote name = %q", acts[2].Name)
	}
}

func TestParseTemplateQuotedHeaderDetected(t *testing.T) {
	text := `"Attività","Tempo Previsto (min)"` + "\n" + `"Solo una",7`
	acts := ParseTemplate(text)
	if len(acts) != 1 || acts[0].Planned != 7*time.Minute {
		t.Fatalf("acts = %+v", acts)
	}
}

func TestParseTemplateEmpty(t *testing.T) {
	if acts := ParseTemplate(""); acts != nil {
		t.Fatalf("empty input should yield nil, got %+v", acts)
	}
	if acts := ParseTemplate("\n\n  \n"); acts != nil {
		t.Fatalf("blank input should yield nil, got %+v", acts)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	src := []meeting.Activity{
		{Name: "Introduzione", Planned: 10 * time.Minute, Status: meeting.StatusPending},
		{Name: `Nome con "virgolette", e virgole`, Planned: 5 * time.Minute, Status: meeting.StatusPending},
		{Name: "Chiusura", Planned: 2 * time.Minute, Status: meeting.StatusPending},
	}

	out := ExportTemplate(src)
	if !strings.HasPrefix(string(out), bom) {
		t.Fatal("template export must carry a BOM")
	}

	back := ParseTemplate(string(out))
	if len(back) != len(src) {
		t.Fatalf("round trip lost rows: %d != %d", len(back), len(src))
	}
	for i := range src {
		if back[i].Name != src[i].Name || back[i].Planned != src[i].Planned {
			t.Fatalf("row %d: %+v != %+v", i, back[i], src[i])
		}
	}
}

// ============================================================
// Full-data dialect
// ============================================================

func TestParseDataCompletedAndPending(t *testing.T) {
	text := strings.Join([]string{
		DataHeader,
		`"Introduzione",10,12,01/06/2026 09:00:00,01/06/2026 09:12:00`,
		`"Solo pianificata",10,,-,-`,
		`"Solo orari",5,,01/06/2026 09:12:00,01/06/2026 09:20:00`,
		`Senza virgolette,7,-,-,-`,
	}, "\n")

	acts := ParseData(text)
	if len(acts) != 4 {
		t.Fatalf("expected 4 activities, got %d", len(acts))
	}

	if acts[0].Status != meeting.StatusCompleted || *acts[0].Actual != 12*time.Minute {
		t.Fatalf("completed row = %+v", acts[0])
	}
	if !acts[0].Start.Equal(localTime(2026, 6, 1, 9, 0, 0)) {
		t.Fatalf("start = %v", acts[0].Start)
	}

	if acts[1].Status != meeting.StatusPending || acts[1].Actual != nil {
		t.Fatalf("pending row = %+v", acts[1])
	}

	// Both timestamps without an actual still mean completed.
	if acts[2].Status != meeting.StatusCompleted || acts[2].Actual != nil {
		t.Fatalf("timestamps-only row = %+v", acts[2])
	}

	if acts[3].Name != "Senza virgolette" || acts[3].Status != meeting.StatusPending {
		t.Fatalf("unquoted row = %+v", acts[3])
	}
}

func TestParseDataSkipsMalformedRows(t *testing.T) {
	text := strings.Join([]string{
		`"Valida",10,-,-,-`,
		`"Troppo corta",10,5`, // fewer than 4 fields after the name
		`riga senza alcuna virgola`,
		`"Senza chiusura,10,-,-,-`, // unterminated quote
		`,10,-,-,-`,                // empty name
		`"Seconda valida",3,-,-,-`,
	}, "\n")

	acts := ParseData(text)
	if len(acts) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d: %+v", len(acts), acts)
	}
	if acts[0].Name != "Valida" || acts[1].Name != "Seconda valida" {
		t.Fatalf("wrong survivors: %+v", acts)
	}
}

func TestParseDataUnparsablePlannedBecomesZero(t *testing.T) {
	acts := ParseData(`"Senza budget",boh,4,-,-`)
	if len(acts) != 1 {
		t.Fatalf("expected 1 row, got %d", len(acts))
	}
	if acts[0].Planned != 0 {
		t.Fatalf("planned = %v, want 0", acts[0].Planned)
	}
	if acts[0].Status != meeting.StatusCompleted {
		t.Fatal("row with actual must be completed")
	}
}

func TestParseDataQuotedNameWithComma(t *testing.T) {
	acts := ParseData(`"Task, 10 min",10,-,-,-`)
	if len(acts) != 1 {
		t.Fatalf("expected 1 row, got %d", len(acts))
	}
	if acts[0].Name != "Task, 10 min" {
		t.Fatalf("name = %q, quoting should protect the comma", acts[0].Name)
	}
	if acts[0].Planned != 10*time.Minute {
		t.Fatalf("planned = %v", acts[0].Planned)
	}
	if acts[0].Status != meeting.StatusPending || acts[0].Actual != nil {
		t.Fatalf("row = %+v, want pending with no actual", acts[0])
	}
}

func TestDataRoundTrip(t *testing.T) {
	start := localTime(2026, 6, 1, 9, 0, 0)
	end := localTime(2026, 6, 1, 9, 12, 0)
	src := []meeting.Activity{
		{Name: "Introduzione", Planned: 10 * time.Minute, Actual: dur(12 * time.Minute),
			Start: &start, End: &end, Status: meeting.StatusCompleted},
		{Name: `Virgole, e "virgolette"`, Planned: 5 * time.Minute, Status: meeting.StatusPending},
	}

	back := ParseData(string(ExportData(src)))
	if len(back) != len(src) {
		t.Fatalf("round trip lost rows: %d != %d", len(back), len(src))
	}
	for i := range src {
		if back[i].Name != src[i].Name || back[i].Planned != src[i].Planned || back[i].Status != src[i].Status {
			t.Fatalf("row %d: %+v != %+v", i, back[i], src[i])
		}
	}
	if !back[0].Start.Equal(start) || !back[0].End.Equal(end) {
		t.Fatalf("timestamps lost: %+v", back[0])
	}
	if *back[0].Actual != *src[0].Actual {
		t.Fatalf("actual lost: %v", back[0].Actual)
	}
	if back[1].Actual != nil || back[1].Start != nil || back[1].End != nil {
		t.Fatalf("pending row grew fields: %+v", back[1])
	}
}

func TestExportDataHeaderAndEmptyFields(t *testing.T) {
	src := []meeting.Activity{{Name: "a", Planned: 90 * time.Second, Status: meeting.StatusPending}}
	out := string(ExportData(src))

	lines := strings.Split(strings.TrimPrefix(out, bom), "\n")
	if lines[0] != DataHeader {
		t.Fatalf("header = %q", lines[0])
	}
	// 90s rounds to 2 minutes; absent fields render empty.
	if lines[1] != `"a",2,,,` {
		t.Fatalf("row = %q", lines[1])
	}
}

// ============================================================
// Files and dialect detection
// ============================================================

func TestWriteAndReadDataFile(t *testing.T) {
	start := localTime(2026, 6, 1, 9, 0, 0)
	end := localTime(2026, 6, 1, 9, 5, 0)
	src := []meeting.Activity{
		{Name: "a", Planned: 5 * time.Minute, Actual: dur(5 * time.Minute),
			Start: &start, End: &end, Status: meeting.StatusCompleted},
	}
	path := filepath.Join(t.TempDir(), "dati.csv")

	if err := WriteData(src, path); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	back, err := ReadData(path)
	if err != nil {
		t.Fatalf("ReadData: %v", err)
	}
	if len(back) != 1 || back[0].Name != "a" {
		t.Fatalf("back = %+v", back)
	}

	raw, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(raw), bom) {
		t.Fatal("file should start with a BOM")
	}
}

func TestWriteTemplateBadPath(t *testing.T) {
	err := WriteTemplate(nil, filepath.Join(t.TempDir(), "no", "such", "dir.csv"))
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestDetect(t *testing.T) {
	if !Detect(DataHeader + "\n\"a\",1,,,") {
		t.Fatal("data header not detected")
	}
	if Detect(TemplateHeader + "\n\"a\",1") {
		t.Fatal("template header misread as data")
	}
	if Detect("10,Introduzione") {
		t.Fatal("headerless text must read as template")
	}
	if Detect("") {
		t.Fatal("empty text is not data")
	}
}

func TestFilenames(t *testing.T) {
	now := localTime(2026, 8, 31, 10, 0, 0)
	if got := DataFilename(now); got != "dati_riunione_2026-08-31.csv" {
		t.Fatalf("data filename = %q", got)
	}
	if got := TemplateFilename(now); got != "template_riunione_2026-08-31.csv" {
		t.Fatalf("template filename = %q", got)
	}
}
