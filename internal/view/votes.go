package view

import "github.com/motortrack/motortrack-go/internal/api"

// VoteTally is the derived voting summary for one traffic report.
type VoteTally struct {
	Upvotes   int
	Downvotes int
	// Ratio is upvotes as a percentage of all votes, 0 when nobody voted.
	Ratio float64
}

// TallyVotes counts a report's votes. Vote values other than +1 and -1 are
// ignored; the backend should never send them, but a bad document must not
// skew the tally.
func TallyVotes(report *api.TrafficReport) VoteTally {
	var tally VoteTally

	for _, vote := range report.Votes {
		switch vote.Value {
		case 1:
			tally.Upvotes++
		case -1:
			tally.Downvotes++
		}
	}

	total := tally.Upvotes + tally.Downvotes
	if total > 0 {
		tally.Ratio = float64(tally.Upvotes) / float64(total) * 100
	}

	return tally
}

// Verified reports whether any admin or user verification is on record.
func Verified(report *api.TrafficReport) bool {
	return report.VerifiedByAdmin > 0 || report.VerifiedByUser > 0
}
