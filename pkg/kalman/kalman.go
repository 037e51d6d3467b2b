// Package kalman implements the discrete linear Gaussian filter engine of
// spec.md §4.6 as a stateless set of pure functions: extrapolate, gain,
// gain1, correct, correct1, step, and step1. Grounded on
// original_source/src/filter/KalmanFilter.{hpp,cpp} and
// KalmanFilterState.{hpp,cpp}, translated from Eigen to internal/linalg
// (gonum-backed).
package kalman

import (
	"errors"
	"fmt"

	"github.com/Rconybea/kalman-sub000/internal/linalg"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
)

// ErrDimMismatch is returned when matrix/vector shapes are incompatible at
// a Kalman routine's call site (spec.md §7).
var ErrDimMismatch = errors.New("kalman: dimension mismatch")

// NotObserved marks an extended state's observable marker when the step
// used the full observation vector rather than a single scalar observable.
const NotObserved = -1

// State is the filter state at step k: step index, time, state vector x_k,
// and covariance P_k (spec.md §3).
type State struct {
	K  uint32
	Tk vtime.Time
	X  *linalg.Matrix // n x 1
	P  *linalg.Matrix // n x n
}

// NState returns the dimension n of the state vector.
func (s State) NState() int {
	return linalg.Rows(s.X)
}

// ExtendedState augments State with the gain matrix used to produce it and
// a marker identifying which scalar observable drove the step (or
// NotObserved for the full-vector case).
type ExtendedState struct {
	State
	K_ *linalg.Matrix // gain: n x m (full) or n x 1 (scalar)
	J  int
}

// Transition is (F, Q): the state transition matrix and system noise
// covariance for one step.
type Transition struct {
	F *linalg.Matrix // n x n
	Q *linalg.Matrix // n x n
}

// Observable is (H, R): the observation matrix and observation noise
// covariance for one step.
type Observable struct {
	H *linalg.Matrix // m x n
	R *linalg.Matrix // m x m
}

// Input is (t_{k+1}, z): the observation vector for the next step.
type Input struct {
	Tkp1 vtime.Time
	Z    *linalg.Matrix // m x 1
}

// NObs returns the dimension m of the observation vector.
func (in Input) NObs() int {
	return linalg.Rows(in.Z)
}

// StepSpec is a callable that produces the transition and observation
// matrices for one step, given the previous state and the incoming
// observation — letting F, Q, H, R depend on Δt = t_{k+1} − t_k and on
// observation cardinality (spec.md §4.6).
type StepSpec func(sk State, in Input) (Transition, Observable)

// FilterSpec pairs a starting extended state with a step specification.
type FilterSpec struct {
	Start ExtendedState
	Step  StepSpec
}

// Extrapolate advances the filter state from t_k to t_{k+1} without
// accounting for observations:
//
//	x(k+1|k) = F·x(k)
//	P(k+1|k) = F·P(k)·Fᵀ + Q
func Extrapolate(tkp1 vtime.Time, sk State, tr Transition) (State, error) {
	n := sk.NState()
	if linalg.Cols(tr.F) != n {
		return State{}, fmt.Errorf("%w: extrapolate: F.cols=%d, x.rows=%d", ErrDimMismatch, linalg.Cols(tr.F), n)
	}

	xExt := linalg.MatMul(tr.F, sk.X)
	ft := linalg.Transpose(tr.F)
	pExt := linalg.Add(linalg.MatMul(linalg.MatMul(tr.F, sk.P), ft), tr.Q)

	return State{
		K:  sk.K + 1,
		Tk: tkp1,
		X:  xExt,
		P:  pExt,
	}, nil
}

// Gain computes the full Kalman gain matrix K = P(k+1|k)·Hᵀ·M⁻¹, where
// M = H·P(k+1|k)·Hᵀ + R is solved via a symmetric-positive-definite
// factorization with diagonal-loading fallback (internal/linalg.InvertSPD),
// standing in for the spec's LDLᵀ-with-pivoting contract.
func Gain(skp1Ext State, obs Observable) (*linalg.Matrix, error) {
	n := linalg.Cols(obs.H)
	m := linalg.Rows(obs.H)

	if linalg.Rows(skp1Ext.P) != n || linalg.Cols(skp1Ext.P) != n {
		return nil, fmt.Errorf("%w: gain: H is %dx%d, expected P to be %dx%d, got %dx%d",
			ErrDimMismatch, m, n, n, n, linalg.Rows(skp1Ext.P), linalg.Cols(skp1Ext.P))
	}
	if linalg.Rows(obs.R) != m || linalg.Cols(obs.R) != m {
		return nil, fmt.Errorf("%w: gain: H is %dx%d, expected R to be %dx%d, got %dx%d",
			ErrDimMismatch, m, n, m, m, linalg.Rows(obs.R), linalg.Cols(obs.R))
	}

	ht := linalg.Transpose(obs.H)
	mMat := linalg.Add(linalg.MatMul(linalg.MatMul(obs.H, skp1Ext.P), ht), obs.R)

	mInv, err := linalg.InvertSPD(mMat)
	if err != nil {
		return nil, fmt.Errorf("kalman: gain: %w", err)
	}

	k := linalg.MatMul(linalg.MatMul(skp1Ext.P, ht), mInv)

	if linalg.Rows(k) > 0 && linalg.Cols(k) > 0 && linalg.Rows(k) != n {
		return nil, fmt.Errorf("%w: gain: expected K.rows=%d, got %d", ErrDimMismatch, n, linalg.Rows(k))
	}

	return k, nil
}

// Gain1 computes the scalar-observable Kalman gain column K_j for
// observable j, using only row j of H and element R[j,j]:
//
//	m   = H_j·P·H_jᵀ + R_jj
//	K_j = P·H_jᵀ / m
func Gain1(skp1Ext State, obs Observable, j int) (*linalg.Matrix, error) {
	m := linalg.Rows(obs.H)
	if j < 0 || j >= m {
		return nil, fmt.Errorf("%w: gain1: observable index %d out of range [0,%d)", ErrDimMismatch, j, m)
	}

	hj := linalg.Row(obs.H, j)
	rjj := obs.R.At(j, j)

	hjt := linalg.Transpose(hj)
	mScalar := linalg.MatMul(linalg.MatMul(hj, skp1Ext.P), hjt).At(0, 0) + rjj
	if mScalar == 0 {
		return nil, fmt.Errorf("kalman: gain1: degenerate innovation variance (m=0) for observable %d", j)
	}

	kj := linalg.Scale(1.0/mScalar, linalg.MatMul(skp1Ext.P, hjt))
	return kj, nil
}

// Correct applies the full observation correction:
//
//	innov   = z − H·x(k+1|k)
//	x(k+1)  = x(k+1|k) + K·innov
//	P(k+1)  = (I − K·H)·P(k+1|k), symmetrized
//
// The returned extended state's observable marker is NotObserved.
func Correct(skp1Ext State, obs Observable, in Input) (ExtendedState, error) {
	n := skp1Ext.NState()
	if in.NObs() != linalg.Rows(obs.H) {
		return ExtendedState{}, fmt.Errorf("%w: correct: z.size=%d, H.rows=%d", ErrDimMismatch, in.NObs(), linalg.Rows(obs.H))
	}

	k, err := Gain(skp1Ext, obs)
	if err != nil {
		return ExtendedState{}, err
	}

	innov := linalg.Sub(in.Z, linalg.MatMul(obs.H, skp1Ext.X))
	xkp1 := linalg.Add(skp1Ext.X, linalg.MatMul(k, innov))

	id := linalg.Identity(n)
	pkp1 := linalg.MatMul(linalg.Sub(id, linalg.MatMul(k, obs.H)), skp1Ext.P)
	pkp1 = linalg.Symmetrize(pkp1)

	return ExtendedState{
		State: State{K: skp1Ext.K, Tk: skp1Ext.Tk, X: xkp1, P: pkp1},
		K_:    k,
		J:     NotObserved,
	}, nil
}

// Correct1 applies the scalar-observable correction for observable j using
// a rank-1 covariance update:
//
//	innov   = z[j] − H_j·x(k+1|k)
//	x(k+1)  = x(k+1|k) + K_j·innov
//	P(k+1)  = (I − K_j·H_j)·P(k+1|k), symmetrized
func Correct1(skp1Ext State, obs Observable, in Input, j int) (ExtendedState, error) {
	n := skp1Ext.NState()
	if j < 0 || j >= in.NObs() {
		return ExtendedState{}, fmt.Errorf("%w: correct1: observable index %d out of range [0,%d)", ErrDimMismatch, j, in.NObs())
	}

	kj, err := Gain1(skp1Ext, obs, j)
	if err != nil {
		return ExtendedState{}, err
	}

	hj := linalg.Row(obs.H, j)
	zj := in.Z.At(j, 0)
	innovj := zj - linalg.MatMul(hj, skp1Ext.X).At(0, 0)

	xkp1 := linalg.Add(skp1Ext.X, linalg.Scale(innovj, kj))

	id := linalg.Identity(n)
	kjhj := linalg.MatMul(kj, hj) // [n x 1] * [1 x n] = [n x n], rank 1
	pkp1 := linalg.MatMul(linalg.Sub(id, kjhj), skp1Ext.P)
	pkp1 = linalg.Symmetrize(pkp1)

	return ExtendedState{
		State: State{K: skp1Ext.K, Tk: skp1Ext.Tk, X: xkp1, P: pkp1},
		K_:    kj,
		J:     j,
	}, nil
}

// Step composes Extrapolate with Correct for one full step t(k) -> t(k+1).
func Step(tkp1 vtime.Time, sk State, tr Transition, obs Observable, in Input) (ExtendedState, error) {
	skp1Ext, err := Extrapolate(tkp1, sk, tr)
	if err != nil {
		return ExtendedState{}, err
	}
	return Correct(skp1Ext, obs, in)
}

// Step1 composes Extrapolate with Correct1 for a scalar-observable step.
func Step1(tkp1 vtime.Time, sk State, tr Transition, obs Observable, in Input, j int) (ExtendedState, error) {
	skp1Ext, err := Extrapolate(tkp1, sk, tr)
	if err != nil {
		return ExtendedState{}, err
	}
	return Correct1(skp1Ext, obs, in, j)
}

// RunStep runs one step of a FilterSpec, deriving (F,Q,H,R) from the step
// specification's StepSpec callback, which may depend on Δt and on sk.
func RunStep(spec StepSpec, sk State, in Input) (ExtendedState, error) {
	tr, obs := spec(sk, in)
	return Step(in.Tkp1, sk, tr, obs, in)
}

// RunStep1 is the scalar-observable counterpart of RunStep.
func RunStep1(spec StepSpec, sk State, in Input, j int) (ExtendedState, error) {
	tr, obs := spec(sk, in)
	return Step1(in.Tkp1, sk, tr, obs, in, j)
}
