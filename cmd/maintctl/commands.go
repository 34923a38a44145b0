package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/ukydev/robot-fleet/internal/maintenance"
	"github.com/ukydev/robot-fleet/internal/models"
	"github.com/ukydev/robot-fleet/internal/service"
)

// ErrThresholdReached is returned by status --fail-on when a controller is at or above the threshold.
var ErrThresholdReached = errors.New("maintenance threshold reached")

func newRootCmd() *cobra.Command {
	var tablePath string

	root := &cobra.Command{
		Use:           "maintctl",
		Short:         "Robot controller maintenance status tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&tablePath, "interval-table", "", "YAML interval table overriding the built-in one")

	resolver := func() (*maintenance.IntervalResolver, error) {
		if tablePath == "" {
			return maintenance.NewDefaultIntervalResolver(), nil
		}
		return maintenance.LoadIntervalResolver(tablePath)
	}

	root.AddCommand(
		newStatusCmd(resolver),
		newIntervalsCmd(resolver),
		newTypesCmd(),
	)
	return root
}

type resolverFunc func() (*maintenance.IntervalResolver, error)

func newStatusCmd(resolver resolverFunc) *cobra.Command {
	var (
		controllersPath string
		historyPath     string
		asJSON          bool
		at              string
		dailyHours      float64
		failOn          string
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Compute maintenance status for exported controllers and history",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver()
			if err != nil {
				return err
			}
			opts := []maintenance.Option{}
			if at != "" {
				now, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
				opts = append(opts, maintenance.WithClock(func() time.Time { return now }))
			}
			var threshold *maintenance.Status
			if failOn != "" {
				var s maintenance.Status
				if err := s.UnmarshalText([]byte(failOn)); err != nil {
					return fmt.Errorf("--fail-on: %w", err)
				}
				threshold = &s
			}

			var controllers []models.Controller
			if err := readJSON(controllersPath, &controllers); err != nil {
				return err
			}
			var history []models.MaintenanceRecord
			if historyPath != "" {
				if err := readJSON(historyPath, &history); err != nil {
					return err
				}
			}

			statuses := evaluateAll(service.NewStatusService(nil, nil, maintenance.NewCalculator(r, opts...), dailyHours), controllers, history)

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(statuses); err != nil {
					return err
				}
			} else if err := printStatus(out, statuses); err != nil {
				return err
			}

			if threshold != nil && len(statuses) > 0 && statuses[0].Overall >= *threshold {
				return fmt.Errorf("%w: %s is %s", ErrThresholdReached, statuses[0].Controller.Name, statuses[0].Overall)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&controllersPath, "controllers", "", "JSON file with an array of controllers")
	cmd.Flags().StringVar(&historyPath, "history", "", "JSON file with an array of maintenance records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVar(&at, "at", "", "Evaluate at this RFC3339 time instead of now")
	cmd.Flags().Float64Var(&dailyHours, "daily-hours", 16, "Servo hours per day used for due date estimates")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit non-zero when any controller is at least WARNING or OVERDUE")
	_ = cmd.MarkFlagRequired("controllers")
	return cmd
}

// evaluateAll computes every controller's status, most urgent first.
func evaluateAll(svc *service.StatusService, controllers []models.Controller, history []models.MaintenanceRecord) []service.ControllerStatus {
	byController := make(map[string][]models.MaintenanceRecord)
	for _, rec := range history {
		byController[rec.ControllerID] = append(byController[rec.ControllerID], rec)
	}
	out := make([]service.ControllerStatus, 0, len(controllers))
	for _, c := range controllers {
		out = append(out, svc.Evaluate(c, byController[c.ID.Hex()]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Overall != out[j].Overall {
			return out[i].Overall > out[j].Overall
		}
		return out[i].Controller.Name < out[j].Controller.Name
	})
	return out
}

func printStatus(w io.Writer, statuses []service.ControllerStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CONTROLLER\tROBOT\tSERVO H\tOVERALL\tDUE")
	for _, cs := range statuses {
		var due []string
		for _, item := range cs.Due() {
			due = append(due, fmt.Sprintf("%s (%s, %dh left)", item.Name, item.Status, item.Remaining))
		}
		dueText := "-"
		if len(due) > 0 {
			dueText = strings.Join(due, "; ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			cs.Controller.Name, cs.Controller.RobotModel, cs.Controller.ServoPowerTime, cs.Overall, dueText)
	}
	return tw.Flush()
}

func newIntervalsCmd(resolver resolverFunc) *cobra.Command {
	var robotModel, controllerModel string

	cmd := &cobra.Command{
		Use:   "intervals",
		Short: "Show the maintenance intervals for a robot and controller model",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolver()
			if err != nil {
				return err
			}
			p := r.Resolve(robotModel, controllerModel)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Periodic maintenance: %d h\n", p.PeriodicMaintenance)
			fmt.Fprintf(out, "Overhaul:             %d h\n", p.Overhaul)
			if p.HasInternalCable() {
				fmt.Fprintf(out, "Internal cable:       %d h\n", *p.InternalCable)
			} else {
				fmt.Fprintln(out, "Internal cable:       -")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&robotModel, "robot-model", "", "Manipulator model, e.g. GP8")
	cmd.Flags().StringVar(&controllerModel, "controller-model", "", "Controller model, e.g. YRC1000")
	return cmd
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List maintenance types",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, t := range maintenance.AllTypes {
				fmt.Fprintf(tw, "%s\t%s\n", t, t.Description())
			}
			return tw.Flush()
		},
	}
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
