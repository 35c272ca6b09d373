package quiz

// Difficulty constants for readability.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// CandidateWord is one learnable term eligible to be drawn into a quiz.
// Immutable for the duration of a question-set build; owned by the word
// store, the builder only reads it.
type CandidateWord struct {
	Word         string `json:"word"`
	Translation  string `json:"translation"`
	FromLanguage string `json:"from_language"`
	ToLanguage   string `json:"to_language"`
	Popularity   int    `json:"popularity"`
	OwnerID      string `json:"owner_id"`
}

// Option is a single multiple-choice answer.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question is a fully assembled multiple-choice quiz question: one correct
// option and three distractors, all with distinct text.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	CorrectAnswer string   `json:"correct_answer"`
	Options       []Option `json:"options"`
	Difficulty    string   `json:"difficulty"`
	Popularity    int      `json:"popularity"`
}

// QuestionSetRequest guides question-set construction for one user.
type QuestionSetRequest struct {
	UserID       string
	FromLanguage string
	ToLanguage   string
	IsAdmin      bool
}

// QuestionSetResponse holds the built questions plus tier metadata the UI
// renders alongside them.
type QuestionSetResponse struct {
	Questions      []Question `json:"questions"`
	TotalAvailable int        `json:"total_available"`
	AccessLevel    string     `json:"access_level"`
	QuestionLimit  int        `json:"question_limit"`
}

// difficultyFor maps a word's community popularity to a display difficulty.
// Widely shared words are considered easier to recognize.
func difficultyFor(popularity int) string {
	switch {
	case popularity >= 5:
		return DifficultyEasy
	case popularity >= 2:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}
