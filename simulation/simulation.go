// Package simulation wires attributes, the engine, the recorders and the
// monitor into one runnable simulation.
package simulation

import (
	"errors"
	"fmt"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/datarecording"
	"github.com/sarchlab/attrsim/monitoring"
	"github.com/sarchlab/attrsim/sim/timing"
	"github.com/sarchlab/attrsim/tracing"
)

// ErrDuplicateAttribute is returned when two attributes share a name.
var ErrDuplicateAttribute = errors.New("simulation: duplicated attribute name")

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id     string
	freq   timing.Freq
	engine *timing.SerialEngine

	dataRecorder    datarecording.DataRecorder
	execRecorder    *datarecording.ExecRecorder
	attrTracer      *tracing.AttributeTracer
	rechargeCounter *tracing.RechargeCountTracer
	runningTimer    *tracing.RunningTimeTracer
	monitor         *monitoring.Monitor
	progress        *runProgress

	attributes    []*attribute.Attribute
	attrNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() timing.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// RechargeCounts returns the tracer counting the recharges of every
// registered attribute.
func (s *Simulation) RechargeCounts() *tracing.RechargeCountTracer {
	return s.rechargeCounter
}

// RunningTimes returns the tracer measuring how long every registered
// attribute has been recharging.
func (s *Simulation) RunningTimes() *tracing.RunningTimeTracer {
	return s.runningTimer
}

// NewAttributeBuilder returns an attribute builder bound to the engine and
// the frequency of the simulation.
func (s *Simulation) NewAttributeBuilder() attribute.Builder {
	return attribute.MakeBuilder().
		WithEngine(s.engine).
		WithFreq(s.freq)
}

// RegisterAttribute registers an attribute with the simulation so that it is
// traced, monitored, and driven by RunFor.
func (s *Simulation) RegisterAttribute(a *attribute.Attribute) error {
	name := a.Name()
	if _, found := s.attrNameIndex[name]; found {
		return fmt.Errorf("%w: %q", ErrDuplicateAttribute, name)
	}

	s.attributes = append(s.attributes, a)
	s.attrNameIndex[name] = len(s.attributes) - 1

	a.AcceptHook(s.rechargeCounter)
	a.AcceptHook(s.runningTimer)

	if s.attrTracer != nil {
		a.AcceptHook(s.attrTracer)
	}

	if s.monitor != nil {
		s.monitor.RegisterAttribute(a)
	}

	return nil
}

// GetAttributeByName returns the attribute with the given name, or nil if no
// such attribute is registered.
func (s *Simulation) GetAttributeByName(name string) *attribute.Attribute {
	i, found := s.attrNameIndex[name]
	if !found {
		return nil
	}

	return s.attributes[i]
}

// Attributes returns the registered attributes in registration order.
func (s *Simulation) Attributes() []*attribute.Attribute {
	return append([]*attribute.Attribute(nil), s.attributes...)
}

// StartAll starts the recharge of every updatable attribute. It tries all the
// attributes and joins the errors.
func (s *Simulation) StartAll() error {
	var errs []error

	for _, a := range s.attributes {
		if !a.IsUpdatable() {
			continue
		}

		if err := a.StartUpdateHandler(); err != nil {
			errs = append(errs, fmt.Errorf("start %s: %w", a.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// StopAll stops the recharge of every attribute.
func (s *Simulation) StopAll() error {
	var errs []error

	for _, a := range s.attributes {
		if err := a.StopUpdateHandler(); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", a.Name(), err))
		}
	}

	return errors.Join(errs...)
}

// RunFor starts every updatable attribute, runs the engine, and stops all the
// attributes once duration has passed in simulated time. Ticks due exactly at
// the deadline are still applied.
func (s *Simulation) RunFor(duration timing.VTimeInSec) error {
	if duration <= 0 {
		return fmt.Errorf("simulation: duration must be positive, got %v",
			duration)
	}

	start := s.engine.CurrentTime()
	deadline := start + duration

	if s.execRecorder != nil {
		s.execRecorder.Set("Duration", fmt.Sprintf("%.10f", duration))
	}

	if err := s.StartAll(); err != nil {
		return errors.Join(err, s.StopAll())
	}

	var stopErr error
	s.engine.Schedule(timing.NewSecondaryFuncEvent(deadline, func() error {
		stopErr = s.StopAll()
		return stopErr
	}))

	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar(
			fmt.Sprintf("Simulation %s", s.id), progressTotal)
		s.progress.track(bar, start, duration)

		defer func() {
			s.progress.untrack()
			s.monitor.CompleteProgressBar(bar)
		}()
	}

	err := s.engine.Run()
	s.engine.Finished()

	return errors.Join(err, stopErr)
}

// Terminate stops the monitor and closes the data recorder.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.monitor != nil {
		errs = append(errs, s.monitor.StopServer())
	}

	if s.dataRecorder != nil {
		s.execRecorder.End()
		errs = append(errs, s.dataRecorder.Close())
	}

	return errors.Join(errs...)
}
