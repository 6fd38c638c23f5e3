/*
 * sweep.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package sweep runs the dhva program over a range of field angles, one run
//after the other, checking how each run ended.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"time"

	dhva "github.com/dhvatools/dhva"
)

//Params are the command line parameters of a dhva run.
type Params struct {
	Binary        string  //path to the dhva program.
	File          string  //BXSF file to analyze.
	NKSC          int     //k-points along one side of the super cell.
	NSC           float64 //reciprocal unit cells along one side of the super cell.
	Phi, Theta    float64 //field direction, in degrees.
	MaxKDiff      float64 //maximum k-space distance between orbit centers in one sheet.
	MaxFreqDiff   float64 //maximum frequency difference between neighbouring orbits.
	MinimumFreq   float64 //in tesla.
	Interpolation int     //0 linear, 1 cubic.
	Graphical     bool
}

//DefaultParams returns the parameters the sweeps are usually run with.
func DefaultParams() Params {
	return Params{
		Binary:        "./dhva",
		NKSC:          400,
		NSC:           4,
		Phi:           90,
		Theta:         90,
		MaxKDiff:      1,
		MaxFreqDiff:   0.01,
		MinimumFreq:   50,
		Interpolation: 1,
	}
}

//Args returns the arguments for the dhva program, in the order it expects them.
func (P Params) Args() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }
	g := 0
	if P.Graphical {
		g = 1
	}
	return []string{
		P.File,
		strconv.Itoa(P.NKSC),
		f(P.NSC),
		f(P.Phi),
		f(P.Theta),
		f(P.MaxKDiff),
		f(P.MaxFreqDiff),
		f(P.MinimumFreq),
		strconv.Itoa(P.Interpolation),
		strconv.Itoa(g),
	}
}

//Policy decides what happens when a run fails for good.
type Policy int

const (
	FailFast Policy = iota //stop the sweep.
	Continue               //go on with the next angle.
)

func (P Policy) String() string {
	if P == Continue {
		return "continue"
	}
	return "fail-fast"
}

//ParsePolicy returns the policy named s.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fail-fast", "failfast", "":
		return FailFast, nil
	case "continue":
		return Continue, nil
	}
	return FailFast, dhva.Errorf(dhva.ErrParse, "ParsePolicy", "unknown policy %q, use fail-fast or continue", s)
}

//MaxRuns is the largest number of runs a sweep can make.
const MaxRuns = 10000

//Sweep is a series of dhva runs where one angle goes over a range, both ends included.
type Sweep struct {
	Params
	Parameter string //"phi" or "theta".
	Start     float64
	Stop      float64
	Step      float64
	Policy    Policy
	Retries   int    //extra attempts for a failed run.
	Dir       string //working directory for the runs. Empty for the current one.
	Stdout    io.Writer
	Stderr    io.Writer
	Log       *slog.Logger
}

//Angles returns the values the swept angle takes.
func (S *Sweep) Angles() ([]float64, error) {
	if S.Parameter != "phi" && S.Parameter != "theta" {
		return nil, dhva.Errorf(dhva.ErrValidation, "Angles", "only phi or theta can be swept, not %q", S.Parameter)
	}
	if S.Step == 0 || math.IsNaN(S.Step) || (S.Stop-S.Start)*S.Step < 0 {
		return nil, dhva.Errorf(dhva.ErrValidation, "Angles", "a step of %g can't go from %g to %g", S.Step, S.Start, S.Stop)
	}
	if math.IsNaN(S.Start) || math.IsNaN(S.Stop) || math.IsInf(S.Start, 0) || math.IsInf(S.Stop, 0) {
		return nil, dhva.Errorf(dhva.ErrValidation, "Angles", "can't sweep from %g to %g", S.Start, S.Stop)
	}
	runs := math.Floor((S.Stop-S.Start)/S.Step+1e-9) + 1
	if runs > MaxRuns {
		return nil, dhva.Errorf(dhva.ErrValidation, "Angles", "a step of %g from %g to %g makes %.0f runs, at most %d are allowed", S.Step, S.Start, S.Stop, runs, MaxRuns)
	}
	ret := make([]float64, int(runs))
	for i := range ret {
		ret[i] = S.Start + float64(i)*S.Step
	}
	return ret, nil
}

//Result is the outcome of the run for one angle.
type Result struct {
	Angle    float64
	Attempts int
	ExitCode int //-1 if the program couldn't be started or was killed.
	Elapsed  time.Duration
	Err      error
}

//OK returns true if the run succeeded.
func (R Result) OK() bool { return R.Err == nil }

//RunError is returned when a run fails for good.
type RunError struct {
	Angle    float64
	Attempts int
	Err      error
}

func (E *RunError) Error() string {
	return fmt.Sprintf("dhva run at %g degrees failed after %d attempt(s): %v", E.Angle, E.Attempts, E.Err)
}

func (E *RunError) Unwrap() error { return E.Err }

func (S *Sweep) logger() *slog.Logger {
	if S.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return S.Log
}

//params returns the parameters for the run at angle.
func (S *Sweep) params(angle float64) Params {
	P := S.Params
	if S.Parameter == "phi" {
		P.Phi = angle
	} else {
		P.Theta = angle
	}
	return P
}

//once runs the program one time.
func (S *Sweep) once(ctx context.Context, P Params) (int, error) {
	cmd := exec.CommandContext(ctx, P.Binary, P.Args()...)
	cmd.Dir = S.Dir
	cmd.Stdout = S.Stdout
	cmd.Stderr = S.Stderr
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode(), err
	}
	return -1, err
}

//runAngle runs the program for one angle, retrying as allowed.
func (S *Sweep) runAngle(ctx context.Context, angle float64) Result {
	log := S.logger().With("parameter", S.Parameter, "angle", angle)
	P := S.params(angle)
	R := Result{Angle: angle}
	start := time.Now()
	for R.Attempts <= S.Retries {
		R.Attempts++
		code, err := S.once(ctx, P)
		R.ExitCode, R.Err = code, err
		if err == nil {
			log.Info("run finished", "attempts", R.Attempts, "elapsed", time.Since(start))
			break
		}
		if ctx.Err() != nil {
			R.Err = ctx.Err()
			break
		}
		log.Warn("run failed", "attempt", R.Attempts, "exit_code", code, "error", err)
	}
	R.Elapsed = time.Since(start)
	return R
}

//Run runs the whole sweep, and returns the results of the runs made.
//With the FailFast policy, the first run that fails for good stops the sweep
//and its error is returned. With Continue, every angle is tried, and the
//error returned, if any, is that of the first failed run.
//A cancelled context stops the sweep after killing the current run.
func (S *Sweep) Run(ctx context.Context) ([]Result, error) {
	angles, err := S.Angles()
	if err != nil {
		return nil, dhva.ErrDecorate(err, "Run")
	}
	if S.File == "" {
		return nil, dhva.Errorf(dhva.ErrValidation, "Run", "no BXSF file to analyze")
	}
	if S.Retries < 0 {
		return nil, dhva.Errorf(dhva.ErrValidation, "Run", "the number of retries can't be negative")
	}
	log := S.logger()
	log.Info("starting sweep", "binary", S.Binary, "file", S.File, "parameter", S.Parameter,
		"runs", len(angles), "policy", S.Policy.String(), "retries", S.Retries)
	results := make([]Result, 0, len(angles))
	var first error
	for _, a := range angles {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		R := S.runAngle(ctx, a)
		results = append(results, R)
		if R.OK() {
			continue
		}
		if errors.Is(R.Err, context.Canceled) || errors.Is(R.Err, context.DeadlineExceeded) {
			return results, R.Err
		}
		rerr := &RunError{Angle: a, Attempts: R.Attempts, Err: R.Err}
		log.Error("run failed for good", "angle", a, "error", R.Err)
		if S.Policy == FailFast {
			return results, rerr
		}
		if first == nil {
			first = rerr
		}
	}
	return results, first
}
