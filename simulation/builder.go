package simulation

import (
	"io"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/attrsim/datarecording"
	"github.com/sarchlab/attrsim/monitoring"
	"github.com/sarchlab/attrsim/sim/timing"
	"github.com/sarchlab/attrsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	recordingOn    bool
	outputFileName string
	dataRecorder   datarecording.DataRecorder
	freq           timing.Freq
	eventLog       io.Writer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn:   true,
		recordingOn: true,
		freq:        1 * timing.KHz,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDataRecorder makes the simulation record into the given recorder
// instead of a new SQLite file. The simulation closes it on Terminate.
func (b Builder) WithDataRecorder(recorder datarecording.DataRecorder) Builder {
	b.dataRecorder = recorder
	return b
}

// WithoutRecording sets the simulation to not record attribute events.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithFreq sets the tick frequency of the attributes created by
// NewAttributeBuilder.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithEventLog prints every event handled by the engine to w.
func (b Builder) WithEventLog(w io.Writer) Builder {
	b.eventLog = w
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && (b.outputFileName != "" || b.dataRecorder != nil) {
		panic("output cannot be set when recording is disabled")
	}

	if b.outputFileName != "" && b.dataRecorder != nil {
		panic("output file name cannot be set with a custom data recorder")
	}

	if b.freq <= 0 {
		panic("frequency must be positive")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:            xid.New().String(),
		freq:          b.freq,
		attrNameIndex: make(map[string]int),
	}

	s.engine = timing.NewSerialEngine()

	if b.eventLog != nil {
		s.engine.AcceptHook(timing.NewEventLogger(log.New(b.eventLog, "", 0)))
	}

	s.rechargeCounter = tracing.NewRechargeCountTracer()
	s.runningTimer = tracing.NewRunningTimeTracer(s.engine)
	s.engine.RegisterSimulationEndHandler(s.runningTimer)

	if b.recordingOn {
		b.buildRecording(s)
	}

	s.progress = &runProgress{}
	s.engine.AcceptHook(s.progress)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}

func (b Builder) buildRecording(s *Simulation) {
	s.dataRecorder = b.dataRecorder
	if s.dataRecorder == nil {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "attrsim_" + s.id
		}

		s.dataRecorder = datarecording.New(outputPath)
	}

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()
	s.execRecorder.Set("Simulation ID", s.id)

	s.attrTracer = tracing.NewAttributeTracer(s.engine, s.dataRecorder)
}
