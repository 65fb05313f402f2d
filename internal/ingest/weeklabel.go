package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
)

// Weekly export filenames look like
// "Automation messages sent_2025-06-302025-07-06.csv": the two dates are
// concatenated after "sent_" with no separator.
var weekFilenamePattern = regexp.MustCompile(`sent_(\d{4}-\d{2}-\d{2})(\d{4}-\d{2}-\d{2})`)

// WeekLabelFromFilename derives the week label from an export filename.
// When the filename does not match the export pattern it falls back to
// the ISO week of the supplied reference time.
func WeekLabelFromFilename(filename string, now time.Time) core.WeekLabel {
	base := filepath.Base(filename)
	if m := weekFilenamePattern.FindStringSubmatch(base); m != nil {
		return core.WeekLabel(fmt.Sprintf("%s a %s", m[1], m[2]))
	}

	year, week := now.ISOWeek()
	return core.WeekLabel(fmt.Sprintf("Semana %d, %d", week, year))
}
