package calculation

import (
	"math"
	"math/rand"

	"github.com/rpgo/retirement-planner/internal/domain"
)

// ReturnDistribution draws annual portfolio returns. Implementations must be
// safe for concurrent use; all randomness comes from the supplied generator.
type ReturnDistribution interface {
	Name() domain.DistributionID
	// Fill writes one return per year into out.
	Fill(rng *rand.Rand, out []float64)
}

// NewReturnDistribution selects the sampler for an assumption set. Asset
// classes turn the normal sampler into a weighted multi-asset portfolio.
func NewReturnDistribution(a domain.AssumptionSet) (ReturnDistribution, error) {
	switch a.Distribution.Kind {
	case domain.DistributionNormal, "":
		if len(a.AssetClasses) > 0 {
			return NewPortfolioDistribution(a.AssetClasses), nil
		}
		return NormalDistribution{Mean: a.ReturnMean.InexactFloat64(), StdDev: a.ReturnStdDev.InexactFloat64()}, nil
	case domain.DistributionStudentT:
		if a.Distribution.DegreesOfFreedom < 3 {
			return nil, domain.NewConfigurationError("assumptions.distribution.degrees_of_freedom", "must be at least 3, got %d", a.Distribution.DegreesOfFreedom)
		}
		mean, sd := a.PlanReturn().InexactFloat64(), a.ReturnStdDev.InexactFloat64()
		if len(a.AssetClasses) > 0 {
			sd = NewPortfolioDistribution(a.AssetClasses).StdDev()
		}
		return StudentTDistribution{Mean: mean, StdDev: sd, DegreesOfFreedom: a.Distribution.DegreesOfFreedom}, nil
	case domain.DistributionBootstrap:
		if len(a.Distribution.Historical) == 0 {
			return nil, domain.NewConfigurationError("assumptions.distribution.historical", "bootstrap sampling needs at least one historical return")
		}
		series := make([]float64, len(a.Distribution.Historical))
		for i, r := range a.Distribution.Historical {
			series[i] = r.InexactFloat64()
		}
		return BootstrapDistribution{Series: series}, nil
	default:
		return nil, domain.NewConfigurationError("assumptions.distribution.kind", "unknown distribution %q", a.Distribution.Kind)
	}
}

// NormalDistribution samples independent normal returns.
type NormalDistribution struct {
	Mean   float64
	StdDev float64
}

func (NormalDistribution) Name() domain.DistributionID { return domain.DistributionNormal }

func (n NormalDistribution) Fill(rng *rand.Rand, out []float64) {
	for i := range out {
		out[i] = n.Mean + n.StdDev*rng.NormFloat64()
	}
}

// StudentTDistribution samples fat-tailed returns scaled so the variance
// matches StdDev squared.
type StudentTDistribution struct {
	Mean             float64
	StdDev           float64
	DegreesOfFreedom int
}

func (StudentTDistribution) Name() domain.DistributionID { return domain.DistributionStudentT }

func (s StudentTDistribution) Fill(rng *rand.Rand, out []float64) {
	nu := float64(s.DegreesOfFreedom)
	scale := s.StdDev * math.Sqrt((nu-2)/nu)
	for i := range out {
		z := rng.NormFloat64()
		chi := 0.0
		for k := 0; k < s.DegreesOfFreedom; k++ {
			g := rng.NormFloat64()
			chi += g * g
		}
		out[i] = s.Mean + scale*z/math.Sqrt(chi/nu)
	}
}

// BootstrapDistribution resamples a historical series with replacement.
type BootstrapDistribution struct {
	Series []float64
}

func (BootstrapDistribution) Name() domain.DistributionID { return domain.DistributionBootstrap }

func (b BootstrapDistribution) Fill(rng *rand.Rand, out []float64) {
	for i := range out {
		out[i] = b.Series[rng.Intn(len(b.Series))]
	}
}

type assetSleeve struct {
	weight, mean, stdDev float64
}

// PortfolioDistribution samples each asset class independently and returns the
// weighted portfolio return.
type PortfolioDistribution struct {
	sleeves []assetSleeve
}

// NewPortfolioDistribution builds a portfolio sampler from asset classes.
func NewPortfolioDistribution(classes []domain.AssetClass) PortfolioDistribution {
	sleeves := make([]assetSleeve, len(classes))
	for i, c := range classes {
		sleeves[i] = assetSleeve{
			weight: c.Weight.InexactFloat64(),
			mean:   c.Mean.InexactFloat64(),
			stdDev: c.StdDev.InexactFloat64(),
		}
	}
	return PortfolioDistribution{sleeves: sleeves}
}

func (PortfolioDistribution) Name() domain.DistributionID { return domain.DistributionNormal }

func (p PortfolioDistribution) Fill(rng *rand.Rand, out []float64) {
	for i := range out {
		r := 0.0
		for _, s := range p.sleeves {
			r += s.weight * (s.mean + s.stdDev*rng.NormFloat64())
		}
		out[i] = r
	}
}

// StdDev is the portfolio volatility under independent sleeves.
func (p PortfolioDistribution) StdDev() float64 {
	variance := 0.0
	for _, s := range p.sleeves {
		variance += s.weight * s.weight * s.stdDev * s.stdDev
	}
	return math.Sqrt(variance)
}
