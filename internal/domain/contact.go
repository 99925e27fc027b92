package domain

import "time"

// Disposition records the outcome of the latest call to a contact.
type Disposition string

const (
	DispositionNew              Disposition = "New"
	DispositionInterested       Disposition = "Interested"
	DispositionNotInterested    Disposition = "Not Interested"
	DispositionSkip             Disposition = "Skip"
	DispositionAnsweringMachine Disposition = "Answering Machine"
	DispositionCallback         Disposition = "Callback"
	DispositionSale             Disposition = "Sale"
	DispositionBusy             Disposition = "Busy"
	DispositionWrongNumber      Disposition = "Wrong Number"
	DispositionUnreachable      Disposition = "Unreachable"
	DispositionDNC              Disposition = "DNC"
	DispositionSMS              Disposition = "SMS"
	DispositionEmail            Disposition = "Email"
	DispositionLink             Disposition = "Link"
)

var dispositions = map[Disposition]struct{}{
	DispositionNew: {}, DispositionInterested: {}, DispositionNotInterested: {},
	DispositionSkip: {}, DispositionAnsweringMachine: {}, DispositionCallback: {},
	DispositionSale: {}, DispositionBusy: {}, DispositionWrongNumber: {},
	DispositionUnreachable: {}, DispositionDNC: {}, DispositionSMS: {},
	DispositionEmail: {}, DispositionLink: {},
}

// Valid reports whether d is a known disposition.
func (d Disposition) Valid() bool {
	_, ok := dispositions[d]
	return ok
}

// Contact is a callable entry inside a list.
type Contact struct {
	ID          string
	ListID      string
	Primary     Phone
	Secondary   *Phone
	Name        string
	Email       string
	Company     string
	Extra       string
	Remarks     string
	Note        string
	Disposition Disposition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
