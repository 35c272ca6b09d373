package access

// Tier describes how many quiz questions a user may receive, based on how
// many words they have contributed. Tiers are recomputed per request and
// never persisted.
type Tier struct {
	Allowed bool   `json:"allowed"`
	Limit   int    `json:"limit"`
	Label   string `json:"label"`
}

// RequiredWords is the minimum word count before quizzes unlock.
const RequiredWords = 50

// AdminLimit is the question limit granted to admins regardless of word count.
const AdminLimit = 50

// Resolve maps (isAdmin, wordCount) to an access tier. Pure function, totally
// defined over all non-negative word counts. Range bounds are inclusive on
// both ends: 50 and 75 are Basic, 76 starts Intermediate.
func Resolve(isAdmin bool, wordCount int) Tier {
	if isAdmin {
		return Tier{Allowed: true, Limit: AdminLimit, Label: "Admin (50 questions)"}
	}

	switch {
	case wordCount < RequiredWords:
		return Tier{}
	case wordCount <= 75:
		return Tier{Allowed: true, Limit: 5, Label: "Basic"}
	case wordCount <= 125:
		return Tier{Allowed: true, Limit: 10, Label: "Intermediate"}
	case wordCount <= 200:
		return Tier{Allowed: true, Limit: 25, Label: "Advanced"}
	default:
		return Tier{Allowed: true, Limit: 50, Label: "Expert"}
	}
}

// Deficit returns how many more words a user needs before quizzes unlock.
// Zero once the floor is reached.
func Deficit(wordCount int) int {
	if wordCount >= RequiredWords {
		return 0
	}
	return RequiredWords - wordCount
}
