package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarchlab/attrsim/config"
	"github.com/sarchlab/attrsim/datarecording"
	"github.com/sarchlab/attrsim/simulation"
	"github.com/sarchlab/attrsim/sim/timing"
)

func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the attributes of a setup file.",
		Long: "`run -c attrs.yaml` starts every attribute that can recharge, " +
			"stops them all after the duration in simulated seconds, and " +
			"prints their final values.",
		Args: cobra.NoArgs,
		RunE: runAttributes,
	}

	addConfigFlag(runCmd)
	runCmd.Flags().Float64("duration", 0,
		"The simulated seconds to run, overriding the file.")
	runCmd.Flags().Bool("monitor", false, "Serve the monitoring page.")
	runCmd.Flags().Int("port", 0, "The port of the monitoring page.")
	runCmd.Flags().Bool("open", false,
		"Open the monitoring page in the browser.")
	runCmd.Flags().String("record", "",
		"The SQLite file to record into, without the .sqlite3 suffix.")
	runCmd.Flags().Bool("no-record", false, "Do not record attribute events.")
	runCmd.Flags().Bool("trace-events", false,
		"Print every engine event to stderr.")

	return runCmd
}

func runAttributes(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	applyRunFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	builder, err := simulationBuilder(cfg)
	if err != nil {
		return err
	}

	if trace, _ := cmd.Flags().GetBool("trace-events"); trace {
		builder = builder.WithEventLog(os.Stderr)
	}

	s := builder.Build()

	if err := registerAttributes(s, cfg); err != nil {
		return joinTerminate(s, err)
	}

	if open, _ := cmd.Flags().GetBool("open"); open && s.GetMonitor() != nil {
		if err := s.GetMonitor().OpenInBrowser(); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open the browser: %v\n", err)
		}
	}

	err = s.RunFor(timing.VTimeInSec(cfg.Simulation.Duration))

	printSummary(cmd.OutOrStdout(), s)

	return joinTerminate(s, err)
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("duration") {
		cfg.Simulation.Duration, _ = flags.GetFloat64("duration")
	}

	if flags.Changed("monitor") {
		cfg.Simulation.Monitor, _ = flags.GetBool("monitor")
	}

	if flags.Changed("port") {
		cfg.Simulation.Monitor = true
		cfg.Simulation.MonitorPort, _ = flags.GetInt("port")
	}

	if flags.Changed("open") {
		cfg.Simulation.Monitor = true
	}

	if flags.Changed("record") {
		cfg.Simulation.Recorder = config.RecorderSQLite
		cfg.Simulation.Output, _ = flags.GetString("record")
	}

	if noRecord, _ := flags.GetBool("no-record"); noRecord {
		cfg.Simulation.Recorder = config.RecorderNone
	}
}

// simulationBuilder translates the simulation settings into a builder.
func simulationBuilder(cfg *config.Config) (simulation.Builder, error) {
	sc := cfg.Simulation
	b := simulation.MakeBuilder().WithFreq(sc.Freq())

	if sc.Monitor {
		b = b.WithMonitorPort(sc.MonitorPort)
	} else {
		b = b.WithoutMonitoring()
	}

	switch sc.Recorder {
	case config.RecorderNone:
		b = b.WithoutRecording()
	case config.RecorderClickHouse:
		recorder, err := datarecording.NewClickHouseRecorder(
			datarecording.ClickHouseConfig{
				Addr:     sc.ClickHouse.Addr,
				Database: sc.ClickHouse.Database,
				Username: sc.ClickHouse.Username,
				Password: sc.ClickHouse.Password,
			})
		if err != nil {
			return b, err
		}

		b = b.WithDataRecorder(recorder)
	default:
		b = b.WithOutputFileName(sc.Output)
	}

	return b, nil
}

func registerAttributes(s *simulation.Simulation, cfg *config.Config) error {
	freq := cfg.Simulation.Freq()

	for _, ac := range cfg.Attributes {
		a, err := ac.Build(s.GetEngine(), freq)
		if err != nil {
			return err
		}

		if err := s.RegisterAttribute(a); err != nil {
			return err
		}
	}

	return nil
}

func printSummary(w io.Writer, s *simulation.Simulation) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ATTRIBUTE\tVALUE\tRECHARGES\tFAILED\tRUNNING (s)")

	for _, a := range s.Attributes() {
		fmt.Fprintf(tw, "%s\t%v\t%d\t%d\t%.3f\n",
			a.Name(),
			a.Value(),
			s.RechargeCounts().Applied(a.Name()),
			s.RechargeCounts().Failed(a.Name()),
			s.RunningTimes().RunningTime(a.Name()),
		)
	}

	tw.Flush()
}

func joinTerminate(s *simulation.Simulation, err error) error {
	if termErr := s.Terminate(); termErr != nil && err == nil {
		return termErr
	}

	return err
}
