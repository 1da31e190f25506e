package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"github.com/drfrankproulx-cmd/OProom/internal/app"
	"github.com/drfrankproulx-cmd/OProom/internal/config"
	"github.com/drfrankproulx-cmd/OProom/internal/model"
	"github.com/drfrankproulx-cmd/OProom/internal/service/patient"
	"github.com/drfrankproulx-cmd/OProom/internal/service/usage"
)

const defaultActor = "oproomctl"

// services are what commands act on.
type services struct {
	patients *patient.Service
	usage    *usage.Service
}

// opener builds the services and a func releasing them.
type opener func(ctx context.Context, configPath string) (*services, func(), error)

func openFromConfig(ctx context.Context, configPath string) (*services, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := app.NewLogger(cfg.Logging).Zerolog()

	store, err := app.OpenStore(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	broker, err := app.OpenBroker(ctx, cfg.Redis, logger)
	if err != nil {
		_ = store.Close(ctx)
		return nil, nil, err
	}

	usageSvc := usage.NewService(store.Usage)
	patientSvc := patient.NewService(store, usageSvc, nil, broker, nil, logger, patient.Config{
		AutoArchiveDelayHours: cfg.Archive.AutoArchiveDelayHours,
		EnforceTransitions:    cfg.Lifecycle.EnforceTransitions,
	})
	release := func() {
		_ = broker.Close()
		if store.Close != nil {
			_ = store.Close(context.Background())
		}
	}
	return &services{patients: patientSvc, usage: usageSvc}, release, nil
}

func newRootCmd(open opener) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "oproomctl",
		Short:         "Operator tool for the OR scheduling backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	withService := func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()
		svc, release, err := open(ctx, configPath)
		if err != nil {
			return err
		}
		defer release()
		return fn(ctx, svc)
	}

	root.AddCommand(sweepCmd(withService))
	root.AddCommand(archiveCmd(withService))
	root.AddCommand(restoreCmd(withService))
	root.AddCommand(archivedCmd(withService))
	root.AddCommand(usageCmd(withService))
	return root
}

type runner func(cmd *cobra.Command, fn func(ctx context.Context, svc *services) error) error

func sweepCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Archive completed patients older than the delay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, svc *services) error {
				delay := svc.patients.DelayHours()
				if cmd.Flags().Changed("delay-hours") {
					delay, _ = cmd.Flags().GetInt("delay-hours")
				}
				n, err := svc.patients.AutoArchiveSweep(ctx, delay)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "archived %d patient(s) completed more than %dh ago\n", n, delay)
				return nil
			})
		},
	}
	cmd.Flags().Int("delay-hours", 0, "override the configured delay")
	return cmd
}

func archiveCmd(run runner) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "archive MRN",
		Short: "Move one patient to the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *services) error {
				resp, err := svc.patients.Archive(ctx, actor, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.MRN, resp.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", defaultActor, "email recorded as the archiver")
	return cmd
}

func restoreCmd(run runner) *cobra.Command {
	var actor string
	cmd := &cobra.Command{
		Use:   "restore MRN",
		Short: "Move one patient back from the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx context.Context, svc *services) error {
				resp, err := svc.patients.Restore(ctx, actor, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resp.MRN, resp.Message)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&actor, "actor", defaultActor, "email recorded as the restorer")
	return cmd
}

func archivedCmd(run runner) *cobra.Command {
	return &cobra.Command{
		Use:   "archived",
		Short: "List archived patients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx context.Context, svc *services) error {
				list, err := svc.patients.ListArchived(ctx)
				if err != nil {
					return err
				}
				return printArchived(cmd.OutOrStdout(), list)
			})
		},
	}
}

func usageCmd(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Inspect per-user suggestion rankings",
	}
	var limit int
	top := &cobra.Command{
		Use:       "top USER diagnosis|cpt_code",
		Short:     "Show a user's most used diagnoses or CPT codes",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(model.UsageDiagnosis), string(model.UsageCPTCode)},
		RunE: func(cmd *cobra.Command, args []string) error {
			itemType := model.UsageItemType(args[1])
			if !itemType.Valid() {
				return fmt.Errorf("unknown item type %q", args[1])
			}
			return run(cmd, func(ctx context.Context, svc *services) error {
				stats, err := svc.usage.FrequentlyUsed(ctx, args[0], itemType, limit)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VALUE\tCOUNT\tLAST USED")
				for _, st := range stats {
					fmt.Fprintf(w, "%s\t%d\t%s\n", st.ItemValue, st.UsageCount, st.LastUsed.Format(time.RFC3339))
				}
				return w.Flush()
			})
		},
	}
	top.Flags().IntVar(&limit, "limit", usage.DefaultLimit, "number of rows, at most 50")
	cmd.AddCommand(top)
	return cmd
}

func printArchived(out io.Writer, list []*model.ArchivedPatient) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MRN\tPATIENT\tARCHIVED AT\tBY\tREASON")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.MRN, p.PatientName, p.ArchivedAt.Format(time.RFC3339), p.ArchivedBy, p.ArchivedReason)
	}
	return w.Flush()
}

func main() {
	if err := newRootCmd(openFromConfig).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
