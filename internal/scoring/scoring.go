package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/orgball2608/reel-ranker/internal/domain"
	"github.com/orgball2608/reel-ranker/pkg/config"
	pkgerrors "github.com/orgball2608/reel-ranker/pkg/errors"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

var errNonFinite = errors.New("score is not finite")

// Signals are the raw inputs of one score.
type Signals struct {
	Timestamp      int64 // epoch seconds
	Duration       float64
	TotalMedia     float64
	TotalFollowers float64
	Views          float64
	Plays          float64
}

func SignalsOf(c domain.ScoredContent) Signals {
	return Signals{
		Timestamp:      c.Video.Timestamp,
		Duration:       c.Video.Duration,
		TotalMedia:     float64(c.User.TotalMedia),
		TotalFollowers: float64(c.User.TotalFollowers),
		Views:          float64(c.Video.Views),
		Plays:          float64(c.Video.Plays),
	}
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type Scorer struct {
	policy Policy
	logger logger.Logger
	clock  func() time.Time
}

func New(opts Opts) (*Scorer, error) {
	return NewWithPolicy(PolicyFromConfig(opts.Config), opts.Logger)
}

func NewWithPolicy(policy Policy, log logger.Logger) (*Scorer, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring policy: %w", err)
	}
	return &Scorer{
		policy: policy,
		logger: log.WithComponent("Scorer"),
		clock:  time.Now,
	}, nil
}

func (s *Scorer) Policy() Policy {
	return s.policy
}

// Now is the reference time used when callers have none of their own.
func (s *Scorer) Now() time.Time {
	return s.clock()
}

// Score never fails: a panic or a non-finite result degrades to 0 so one bad
// signal only pushes its record to the bottom of the ranking.
func (s *Scorer) Score(now time.Time, sig Signals) (score float64) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Scoring degraded", "code", pkgerrors.CodeScoringDegraded, "panic", r)
			score = 0
		}
	}()

	score, err := Compute(s.policy, now, sig)
	if err != nil {
		s.logger.Warn("Scoring degraded", "code", pkgerrors.CodeScoringDegraded, "error", err, "signals", sig)
		return 0
	}
	return score
}

// Apply scores c in place against now.
func (s *Scorer) Apply(now time.Time, c *domain.ScoredContent) {
	score := s.Score(now, SignalsOf(*c))
	c.Score = &score
}

// Compute is the pure scoring function.
func Compute(p Policy, now time.Time, sig Signals) (float64, error) {
	ageHours := now.Sub(time.Unix(sig.Timestamp, 0)).Hours()

	normAge := clamp(1 - ageHours/p.Ceilings.AgeHours)
	normViews := clamp(sig.Views / p.Ceilings.Views)
	normDuration := clamp(sig.Duration / p.Ceilings.Duration)
	normPlays := clamp(sig.Plays / p.Ceilings.Plays)
	normTotalPosts := clamp(sig.TotalMedia / p.Ceilings.TotalPosts)
	// Follower counts are heavy-tailed; a linear term would pin most
	// candidates to either end.
	normFollowers := clamp(
		math.Log10(math.Max(sig.TotalFollowers, 0)+1) / math.Log10(p.Ceilings.Followers+1),
	)

	w := p.Weights
	sum := normAge*w.Age +
		normViews*w.Views +
		normDuration*w.Duration +
		normPlays*w.Plays +
		normTotalPosts*w.TotalPosts +
		normFollowers*w.Followers

	if math.IsNaN(sum) || math.IsInf(sum, 0) {
		return 0, errNonFinite
	}

	score := math.Round(sum*10*100) / 100
	return math.Min(math.Max(score, 0), 10), nil
}

// clamp keeps v in [0, 1]; NaN passes through and is caught by Compute.
func clamp(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
