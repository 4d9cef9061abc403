package entity

import "fmt"

// EnergyPolicy decides how a dividing parent's energy is handed to its
// children. Split receives the parent's energy and the per-child thresholds
// and returns one starting energy per child.
type EnergyPolicy interface {
	Name() string
	Split(parent int64, thresholds []int64) []int64
}

// ResetEnergy starts every child at zero energy; the parent's energy leaves
// the system with it.
type ResetEnergy struct{}

func (ResetEnergy) Name() string { return "reset" }

func (ResetEnergy) Split(_ int64, thresholds []int64) []int64 {
	return make([]int64, len(thresholds))
}

// ConserveEnergy hands the parent's energy on in full. Each child receives
// its threshold plus an equal share of the surplus; the remainder goes to the
// first children in order.
type ConserveEnergy struct{}

func (ConserveEnergy) Name() string { return "conserve" }

func (ConserveEnergy) Split(parent int64, thresholds []int64) []int64 {
	n := int64(len(thresholds))
	out := make([]int64, n)
	if n == 0 {
		return out
	}
	var sum int64
	for _, t := range thresholds {
		sum += t
	}
	surplus := parent - sum
	if surplus < 0 {
		// Not reachable through division, which requires parent >= sum.
		for i := range out {
			out[i] = parent / n
		}
		for i := int64(0); i < parent%n; i++ {
			out[i]++
		}
		return out
	}
	share, rem := surplus/n, surplus%n
	for i, t := range thresholds {
		out[i] = t + share
		if int64(i) < rem {
			out[i]++
		}
	}
	return out
}

// EnergyPolicyByName resolves a configured policy name.
func EnergyPolicyByName(name string) (EnergyPolicy, error) {
	switch name {
	case "", "reset":
		return ResetEnergy{}, nil
	case "conserve":
		return ConserveEnergy{}, nil
	}
	return nil, fmt.Errorf("entity: unknown energy policy %q", name)
}
