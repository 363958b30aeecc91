package model

// Topic is the controlled-vocabulary classification of a permit
// description. TopicUnknown means present-but-unclassified, not an error.
type Topic string

const (
	TopicRetrofit Topic = "retrofit"
	TopicDamage   Topic = "damage"
	TopicUnknown  Topic = ""
)

// Permit is one building permit record from the fixed 21-column export.
// Cost and the date fields are null-able: coercion failures become nil
// rather than dropping the row.
type Permit struct {
	PermitNum         string
	PermitClass       string
	PermitClassMapped string
	PermitTypeMapped  string
	PermitTypeDesc    string
	Description       string
	EstProjectCost    *float64
	AppliedDate       string
	ReadyToIssueDate  string
	IssuedDate        string
	ExpiresDate       string
	CompletedDate     string
	StatusCurrent     string
	OriginalAddress1  string
	OriginalCity      string
	OriginalState     string
	OriginalZip       string
	Latitude          float64
	Longitude         float64
	TotalDaysReview   *float64
	NumReviewCycles   *float64
	Zoning            string

	// Derived attributes.
	Topic             Topic
	LiquefactionProne bool
	SlideProne        bool
	AreaID            string
	AreaName          string
	InArea            bool
}
