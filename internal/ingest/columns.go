package ingest

import (
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// Column names as they appear in the weekly automation exports.
const (
	ColMessageName     = "Message name"
	ColSubject         = "Subject"
	ColListName        = "List name"
	ColSent            = "Sent"
	ColDelivered       = "Delivered"
	ColOpened          = "Opened"
	ColOpenRate        = "Open rate"
	ColClicked         = "Clicked"
	ColClickRate       = "Click rate"
	ColCTOR            = "CTOR"
	ColBounced         = "Bounced"
	ColBounceRate      = "Bounce rate"
	ColMarkedAsSpam    = "Marked as spam"
	ColSpamRate        = "Spam complaint rate"
	ColUnsubscribed    = "Unsubscribed"
	ColUnsubscribeRate = "Unsubscribe rate"
	ColCreatedOn       = "Created on"
	ColAutomation      = "Automacao"
)

// RequiredWeeklyColumns must all be present in a weekly export.
var RequiredWeeklyColumns = []string{
	ColMessageName, ColSubject, ColListName,
	ColSent, ColDelivered, ColOpened, ColOpenRate,
	ColClicked, ColClickRate, ColCTOR,
	ColBounced, ColBounceRate,
	ColMarkedAsSpam, ColSpamRate,
	ColUnsubscribed, ColUnsubscribeRate,
	ColCreatedOn,
}

// RequiredMappingColumns must all be present in a mapping file.
var RequiredMappingColumns = []string{ColMessageName, ColAutomation}

// ValidateColumns checks that every required column exists in the table
// headers and reports all missing ones at once.
func ValidateColumns(table *ports.TableData, required []string) error {
	present := make(map[string]bool, len(table.Headers))
	for _, h := range table.Headers {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return errors.ColumnsMissing(missing)
	}
	return nil
}
