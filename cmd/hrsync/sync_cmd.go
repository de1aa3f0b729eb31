package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/iota-uz/hrsync/modules/hris/domain"
	"github.com/iota-uz/hrsync/modules/hris/services"
)

type syncOptions struct {
	from     string
	to       string
	noUpload bool
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:       "sync directory|roster|attendance",
		Short:     "Run one export and stream its progress",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(services.KindDirectory), string(services.KindRoster), string(services.KindAttendance)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := services.ParseKind(args[0])
			if err != nil {
				return withCode(exitUsage, err)
			}
			conf, err := root.load()
			if err != nil {
				return err
			}
			defer conf.Unload()

			req, err := buildRunRequest(kind, opts, time.Now(), conf.Export.Location())
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), conf)
			if err != nil {
				return err
			}
			return runSync(cmd.Context(), a.pipeline, req, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "Attendance window start (YYYY-MM-DD, default yesterday)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Attendance window end (YYYY-MM-DD, default yesterday)")
	cmd.Flags().BoolVar(&opts.noUpload, "no-upload", false, "Write the local file only")
	return cmd
}

func buildRunRequest(kind services.Kind, opts syncOptions, now time.Time, loc *time.Location) (services.RunRequest, error) {
	req := services.RunRequest{Kind: kind, NoUpload: opts.noUpload}
	if kind != services.KindAttendance {
		if opts.from != "" || opts.to != "" {
			return req, withCode(exitUsage, fmt.Errorf("--from/--to only apply to the attendance export"))
		}
		return req, nil
	}
	window, err := domain.ParseDateRange(opts.from, opts.to, now, loc)
	if err != nil {
		return req, withCode(exitUsage, err)
	}
	req.Window = window
	return req, nil
}

type runner interface {
	Start(ctx context.Context, req services.RunRequest) *services.Run
}

// runSync prints every progress message and maps the outcome to an exit code.
func runSync(ctx context.Context, p runner, req services.RunRequest, out io.Writer) error {
	run := p.Start(ctx, req)
	for e := range run.Events {
		fmt.Fprintln(out, e.Message)
	}
	result, err := run.Wait()
	if err != nil {
		return classify(err)
	}
	if failed := result.Delivery.Failed(); len(failed) > 0 {
		return withCode(exitDelivery, failed[0].Err)
	}
	return nil
}
