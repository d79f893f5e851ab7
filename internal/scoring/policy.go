package scoring

import (
	"fmt"
	"math"

	"github.com/orgball2608/reel-ranker/pkg/config"
)

// Ceilings are the assumed maxima used as min-max denominators.
type Ceilings struct {
	Views      float64
	Duration   float64 // seconds
	TotalPosts float64
	Followers  float64
	AgeHours   float64
	Plays      float64
}

type Weights struct {
	Age        float64
	Views      float64
	Duration   float64
	Plays      float64
	TotalPosts float64
	Followers  float64
}

func (w Weights) Sum() float64 {
	return w.Age + w.Views + w.Duration + w.Plays + w.TotalPosts + w.Followers
}

type Policy struct {
	Ceilings Ceilings
	Weights  Weights
}

func DefaultPolicy() Policy {
	return Policy{
		Ceilings: Ceilings{
			Views:      5e7,
			Duration:   180,
			TotalPosts: 1000,
			Followers:  5e7,
			AgeHours:   168,
			Plays:      5e7,
		},
		Weights: Weights{
			Age:        0.25,
			Views:      0.20,
			Duration:   0.15,
			Plays:      0.15,
			TotalPosts: 0.10,
			Followers:  0.15,
		},
	}
}

func PolicyFromConfig(cfg *config.Config) Policy {
	s := cfg.Scoring
	return Policy{
		Ceilings: Ceilings{
			Views:      s.MaxViews,
			Duration:   s.MaxDuration,
			TotalPosts: s.MaxTotalPosts,
			Followers:  s.MaxFollowers,
			AgeHours:   s.MaxAgeHours,
			Plays:      s.MaxPlays,
		},
		Weights: Weights{
			Age:        s.WeightAge,
			Views:      s.WeightViews,
			Duration:   s.WeightDuration,
			Plays:      s.WeightPlays,
			TotalPosts: s.WeightTotalPosts,
			Followers:  s.WeightFollowers,
		},
	}
}

// Validate requires positive finite ceilings and non-negative weights summing
// to at most 1, which keeps every score inside [0, 10].
func (p Policy) Validate() error {
	ceilings := map[string]float64{
		"views":       p.Ceilings.Views,
		"duration":    p.Ceilings.Duration,
		"total_posts": p.Ceilings.TotalPosts,
		"followers":   p.Ceilings.Followers,
		"age_hours":   p.Ceilings.AgeHours,
		"plays":       p.Ceilings.Plays,
	}
	for name, v := range ceilings {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("ceiling %s must be positive and finite, got %v", name, v)
		}
	}

	weights := map[string]float64{
		"age":         p.Weights.Age,
		"views":       p.Weights.Views,
		"duration":    p.Weights.Duration,
		"plays":       p.Weights.Plays,
		"total_posts": p.Weights.TotalPosts,
		"followers":   p.Weights.Followers,
	}
	for name, v := range weights {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weight %s must be non-negative and finite, got %v", name, v)
		}
	}
	if sum := p.Weights.Sum(); sum > 1+1e-9 {
		return fmt.Errorf("weights sum to %v, want at most 1", sum)
	}
	return nil
}
