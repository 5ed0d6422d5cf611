// File: cmd/jobsbench/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// jobsbench drives the scheduler with synthetic load and prints
// throughput. Useful for tuning backoff and pool sizes on a target
// machine.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-jobs/config"
	"github.com/momentics/hioload-jobs/sched"
)

var (
	flagConfig     string
	flagWorkers    int
	flagJobs       int
	flagSubmitters int
	flagSpinWork   int
	flagVerbose    bool
)

func main() {
	root := &cobra.Command{
		Use:   "jobsbench",
		Short: "Benchmark the hioload-jobs work-stealing scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.Flags().StringVarP(&flagConfig, "config", "c", "", "YAML scheduler config")
	root.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "worker count (0 = auto)")
	root.Flags().IntVarP(&flagJobs, "jobs", "n", 1_000_000, "total jobs to execute")
	root.Flags().IntVarP(&flagSubmitters, "submitters", "s", 1, "concurrent submitting goroutines")
	root.Flags().IntVar(&flagSpinWork, "spin-work", 64, "busy iterations per job")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "log scheduler lifecycle")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	runtime.LockOSThread()

	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
	}
	if flagWorkers > 0 {
		cfg.Workers = flagWorkers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := cfg.Options()
	if flagVerbose {
		opts = append(opts, sched.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}
	s, err := sched.New(opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	var done atomic.Int64
	work := func(any) {
		for i := 0; i < flagSpinWork; i++ {
			_ = i
		}
		done.Add(1)
	}

	perSubmitter := flagJobs / flagSubmitters
	start := time.Now()

	var g errgroup.Group
	handles := make([][]sched.Handle, flagSubmitters)
	for sub := 0; sub < flagSubmitters; sub++ {
		sub := sub
		handles[sub] = make([]sched.Handle, 0, perSubmitter)
		g.Go(func() error {
			for i := 0; i < perSubmitter; i++ {
				h, err := s.Submit(work, nil)
				for err != nil {
					// Pool exhausted: help drain, then retry.
					s.WaitAll(handles[sub])
					handles[sub] = handles[sub][:0]
					h, err = s.Submit(work, nil)
				}
				handles[sub] = append(handles[sub], h)
			}
			s.WaitAll(handles[sub])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("workers:    %d\n", s.NumWorkers())
	fmt.Printf("jobs:       %d\n", done.Load())
	fmt.Printf("elapsed:    %s\n", elapsed)
	fmt.Printf("throughput: %.0f jobs/s\n", float64(done.Load())/elapsed.Seconds())
	for k, v := range s.Stats() {
		fmt.Printf("  %-16s %d\n", k, v)
	}
	return nil
}
