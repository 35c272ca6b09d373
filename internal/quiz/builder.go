package quiz

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MinPoolSize is the fewest distinct candidate words (after exclusions)
// required to build a question: one answer plus three distractors.
const MinPoolSize = 4

const distractorCount = 3

// InsufficientPoolError signals that the filtered candidate pool cannot
// support question construction. Available carries the actual count so the
// caller can explain the deficit to the user.
type InsufficientPoolError struct {
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("insufficient candidate pool: %d words available, need at least %d", e.Available, MinPoolSize)
}

// Builder assembles randomized multiple-choice question sets from a
// candidate word pool.
type Builder struct {
	rand *rand.Rand
}

// NewBuilder creates a builder seeded from the wall clock.
func NewBuilder() *Builder {
	return &Builder{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewBuilderWithSeed creates a builder with a deterministic source, used by
// tests that assert on draw behavior.
func NewBuilderWithSeed(seed int64) *Builder {
	return &Builder{rand: rand.New(rand.NewSource(seed))}
}

// Build produces up to requestedCount questions from pool, skipping any word
// in exclude (the requesting user's own submissions). No two questions share
// an underlying word. Returns *InsufficientPoolError when the filtered pool
// has fewer than MinPoolSize distinct words.
func (b *Builder) Build(pool []CandidateWord, exclude map[string]struct{}, requestedCount int) ([]Question, error) {
	filtered := filterPool(pool, exclude)
	if len(filtered) < MinPoolSize {
		return nil, &InsufficientPoolError{Available: len(filtered)}
	}

	// Popularity ordering biases any upstream truncation toward common
	// vocabulary; the draw below stays uniform over the filtered set.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Popularity > filtered[j].Popularity
	})

	effectiveCount := requestedCount
	if effectiveCount > len(filtered) {
		effectiveCount = len(filtered)
	}

	// Sampling without replacement via partial Fisher-Yates: guaranteed
	// termination and no duplicate words in the output set.
	order := b.rand.Perm(len(filtered))

	questions := make([]Question, 0, effectiveCount)
	for _, idx := range order[:effectiveCount] {
		q, err := b.buildQuestion(filtered, idx)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// buildQuestion assembles one question for filtered[idx], drawing three
// distractor translations from the other pool entries.
func (b *Builder) buildQuestion(filtered []CandidateWord, idx int) (Question, error) {
	word := filtered[idx]

	seen := map[string]struct{}{word.Translation: {}}
	distractors := make([]string, 0, distractorCount)

	// Scan the other entries in random order, skipping translations that
	// collide with the answer or an already-chosen distractor.
	for _, j := range b.rand.Perm(len(filtered)) {
		if j == idx {
			continue
		}
		text := filtered[j].Translation
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		distractors = append(distractors, text)
		if len(distractors) == distractorCount {
			break
		}
	}
	if len(distractors) < distractorCount {
		// Too many words share a translation; count distinct texts so the
		// caller can report the real pool size.
		return Question{}, &InsufficientPoolError{Available: len(seen)}
	}

	options := make([]Option, 0, distractorCount+1)
	options = append(options, Option{Text: word.Translation, IsCorrect: true})
	for _, d := range distractors {
		options = append(options, Option{Text: d})
	}
	b.rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		ID:            uuid.NewString(),
		Prompt:        word.Word,
		CorrectAnswer: word.Translation,
		Options:       options,
		Difficulty:    difficultyFor(word.Popularity),
		Popularity:    word.Popularity,
	}, nil
}

// filterPool drops excluded words and deduplicates by word text, keeping the
// most popular entry for each word.
func filterPool(pool []CandidateWord, exclude map[string]struct{}) []CandidateWord {
	byWord := make(map[string]int, len(pool))
	filtered := make([]CandidateWord, 0, len(pool))
	for _, cw := range pool {
		if _, skip := exclude[cw.Word]; skip {
			continue
		}
		if prev, ok := byWord[cw.Word]; ok {
			if cw.Popularity > filtered[prev].Popularity {
				filtered[prev] = cw
			}
			continue
		}
		byWord[cw.Word] = len(filtered)
		filtered = append(filtered, cw)
	}
	return filtered
}
