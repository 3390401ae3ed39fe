// Package harness evaluates the extractor and matcher against a fixed set of
// annotated requests plus randomly generated ones, either in process or
// against a running HTTP server.
package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/extract"
	"github.com/liteapi-travel/room-matcher-async/internal/model"
)

// ErrConnection marks a request that never reached the server.
var ErrConnection = errors.New("connection failure")

// Expected holds the constraints a case must extract. Zero fields are not
// checked.
type Expected struct {
	Capacity *int
	Time     string
	Features []string
}

type Case struct {
	Text        string
	Expected    Expected
	EvaluateNLP bool
}

// Matcher resolves a request text to a result.
type Matcher interface {
	Match(ctx context.Context, text string) (model.Result, error)
}

// Stats is the evaluation summary.
type Stats struct {
	TotalTests         int `json:"totalTests"`
	ExactMatches       int `json:"exactMatches"`
	HeuristicMatches   int `json:"heuristicMatches"`
	NoneMatches        int `json:"noneMatches"`
	Failures           int `json:"failures"`
	NLPFailures        int `json:"nlpFailures"`
	ConnectionFailures int `json:"connectionFailures"`
}

func intPtr(n int) *int { return &n }

// FixedCases are the annotated requests whose extraction is checked.
func FixedCases() []Case {
	return []Case{
		{
			Text:        "I need a room for 6 people with a projector at 14:00",
			Expected:    Expected{Capacity: intPtr(6), Time: "14:00", Features: []string{"projector"}},
			EvaluateNLP: true,
		},
		{
			Text:        "Meeting for 10 pax with wifi",
			Expected:    Expected{Capacity: intPtr(10), Features: []string{"wifi"}},
			EvaluateNLP: true,
		},
		{
			Text:        "Small room for 2 at 9am",
			Expected:    Expected{Capacity: intPtr(2), Time: "09:00"},
			EvaluateNLP: true,
		},
		{
			Text:        "Conference room with tv and whiteboard",
			Expected:    Expected{Features: []string{"tv", "whiteboard"}},
			EvaluateNLP: true,
		},
		{
			Text:        "Need a spot for 5 users",
			Expected:    Expected{Capacity: intPtr(5)},
			EvaluateNLP: true,
		},
		{
			Text:        "I need a place for five peeps with projector pls",
			Expected:    Expected{Features: []string{"projector"}},
			EvaluateNLP: true,
		},
	}
}

var baseQueries = []string{
	"room for 6 at 5pm with wifi",
	"room for 6 at 5pm with wheel chair",
	"room for 150 with wifi",
	"need a room for 12 with projector at 2pm",
	"book for five peeps with whiteboard",
	"room for 8 with hearing loop",
	"room for 10 with braille signage",
	"room for 4 at 10:30 with monitor",
	"room for 20 at 11am with projector and wifi",
	"room for 3 in afternoon with monitor",
	"room for 16 at 4pm with wheelchair access",
	"meeting room for 7 with whiteboard at 3pm",
	"room for 12 with video conferencing and wifi",
	"room for 2 at 9am",
	"room for 9 with sound system",
	"room for 18 at 6pm with projector",
	"room for 5 with braille signage",
	"room for 14 with conference phone at 1pm",
	"room for 6 with wheelchair access and hearing loop",
	"room for 11 at 10am with tv",
}

// BaseQueries returns the stock demo queries. Their extraction is not
// checked.
func BaseQueries() []Case {
	cases := make([]Case, len(baseQueries))
	for i, q := range baseQueries {
		cases[i] = Case{Text: q}
	}
	return cases
}

var (
	templates = []string{
		"I need a room for {N} people with {F} at {T}",
		"Book a space for {N} pax",
		"Meeting room with {F}",
		"Room for {N} at {T}",
		"Can I get a room with {F} and {F2}?",
		"Schedule a meeting for {N} users",
	}
	templateFeatures = []string{"projector", "whiteboard", "wifi", "tv", "screen", "monitor", "wheel chair", "hearing loop"}
	templateTimes    = []string{"14:00", "2pm", "9am", "10:30", "15:00", "5pm", "6pm"}
)

// Generate fills n random templates. The same rng seed yields the same cases.
func Generate(rng *rand.Rand, n int) []Case {
	cases := make([]Case, 0, n)
	for i := 0; i < n; i++ {
		text := templates[rng.Intn(len(templates))]
		r := strings.NewReplacer(
			"{N}", fmt.Sprint(rng.Intn(20)+1),
			"{F2}", templateFeatures[rng.Intn(len(templateFeatures))],
			"{F}", templateFeatures[rng.Intn(len(templateFeatures))],
			"{T}", templateTimes[rng.Intn(len(templateTimes))],
		)
		cases = append(cases, Case{Text: r.Replace(text)})
	}
	return cases
}

// Passes reports whether extracted satisfies every populated field of e.
// Features are compared case-insensitively and extra features are allowed.
func (e Expected) Passes(extracted model.Constraints) bool {
	if e.Capacity != nil && (extracted.Capacity == nil || *extracted.Capacity != *e.Capacity) {
		return false
	}
	if e.Time != "" && extracted.Time != e.Time {
		return false
	}
	found := make(map[string]bool, len(extracted.Requirements))
	for _, f := range extracted.Requirements {
		found[strings.ToLower(f)] = true
	}
	for _, f := range e.Features {
		if !found[strings.ToLower(f)] {
			return false
		}
	}
	return true
}

// Run evaluates every case with m. Individual failures are counted, never
// returned.
func Run(ctx context.Context, cases []Case, m Matcher, logger *zap.Logger) Stats {
	stats := Stats{TotalTests: len(cases)}
	for _, tc := range cases {
		if tc.EvaluateNLP && !tc.Expected.Passes(extract.Extract(tc.Text)) {
			stats.NLPFailures++
			logger.Debug("extraction mismatch", zap.String("text", tc.Text))
		}

		result, err := m.Match(ctx, tc.Text)
		if err != nil {
			logger.Warn("error processing request", zap.String("text", tc.Text), zap.Error(err))
			if errors.Is(err, ErrConnection) {
				stats.ConnectionFailures++
			}
			stats.Failures++
			continue
		}

		switch result.MatchType {
		case model.MatchExact:
			stats.ExactMatches++
		case model.MatchHeuristic:
			stats.HeuristicMatches++
		case model.MatchNone:
			stats.NoneMatches++
		default:
			stats.Failures++
		}
	}
	return stats
}

// WriteFile stores s as indented JSON at path.
func (s Stats) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
