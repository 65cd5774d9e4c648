package sim

import (
	"fmt"
	"io"
	"math"
	"slices"
	"time"
)

// StrategyStats accumulates per-hand results for one strategy, in big blinds.
type StrategyStats struct {
	Hands     int
	Showdowns int
	SumBB     float64
	SumBB2    float64 // sum of squares for the variance
}

func (s *StrategyStats) add(netBB float64, showdown bool) {
	s.Hands++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	if showdown {
		s.Showdowns++
	}
}

func (s *StrategyStats) merge(o *StrategyStats) {
	s.Hands += o.Hands
	s.Showdowns += o.Showdowns
	s.SumBB += o.SumBB
	s.SumBB2 += o.SumBB2
}

// Mean returns big blinds per hand.
func (s *StrategyStats) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance.
func (s *StrategyStats) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s *StrategyStats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean.
func (s *StrategyStats) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// Report summarises a simulation run.
type Report struct {
	Tables     int
	Hands      int
	Showdowns  int
	Actions    int
	TimedOut   int // decisions the turn timer made
	Rake       int64
	Rebuys     int64
	Strategies map[string]*StrategyStats
	Elapsed    time.Duration
}

func newReport() *Report {
	return &Report{Strategies: make(map[string]*StrategyStats)}
}

func (r *Report) strategy(name string) *StrategyStats {
	s, ok := r.Strategies[name]
	if !ok {
		s = &StrategyStats{}
		r.Strategies[name] = s
	}
	return s
}

func (r *Report) merge(o *Report) {
	r.Tables += o.Tables
	r.Hands += o.Hands
	r.Showdowns += o.Showdowns
	r.Actions += o.Actions
	r.TimedOut += o.TimedOut
	r.Rake += o.Rake
	r.Rebuys += o.Rebuys
	for name, s := range o.Strategies {
		r.strategy(name).merge(s)
	}
}

// HandsPerSecond is the overall throughput.
func (r *Report) HandsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Hands) / r.Elapsed.Seconds()
}

// Write prints a plain text summary.
func (r *Report) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "tables=%d hands=%d showdowns=%d actions=%d timeouts=%d rake=%d rebuys=%d elapsed=%s (%.0f hands/s)\n",
		r.Tables, r.Hands, r.Showdowns, r.Actions, r.TimedOut, r.Rake, r.Rebuys, r.Elapsed.Round(time.Millisecond), r.HandsPerSecond()); err != nil {
		return err
	}
	names := make([]string, 0, len(r.Strategies))
	for name := range r.Strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		s := r.Strategies[name]
		if _, err := fmt.Fprintf(w, "  %-8s seat-hands=%-7d bb/hand=%+.3f ±%.3f showdown=%.1f%%\n",
			name, s.Hands, s.Mean(), 1.96*s.StdError(), pct(s.Showdowns, s.Hands)); err != nil {
			return err
		}
	}
	return nil
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
