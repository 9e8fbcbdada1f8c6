// Command flowctl assembles a small demonstration graph — one source
// node, one filtering processor, and one sink — and drives it through
// connect, initialize, start, two updates, and a source checkpoint,
// then prints each node's state info and the sink's contents.
package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/minemeld-go/flowfabric/chassis"
	"github.com/minemeld-go/flowfabric/checkpoint"
	"github.com/minemeld-go/flowfabric/fabric"
	"github.com/minemeld-go/flowfabric/filter"
	"github.com/minemeld-go/flowfabric/node"
	"github.com/minemeld-go/flowfabric/obslog"
)

type cliOptions struct {
	CheckpointDir string `long:"checkpoint-dir" description:"directory for persisted checkpoint markers" default:"./flowctl-checkpoints"`
	DropPrefix    string `long:"drop-prefix" description:"indicator prefix the processor filters out" default:"test-"`
}

func main() {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "flowctl:", err)
		os.Exit(1)
	}
}

func run(opts cliOptions) error {
	ctx := context.Background()
	logger := obslog.Default()

	fab := fabric.NewInProcess()
	ch := chassis.New(fab, logger)
	if err := ch.Start(); err != nil {
		return fmt.Errorf("start fabric: %w", err)
	}
	defer func() { _ = ch.Stop() }()

	sharedStore := checkpoint.NewFileStore(opts.CheckpointDir)

	sourceHooks := &passthroughHooks{}
	sourceFT, err := node.New("source", ch, mustChain(nil), mustChain(nil), sharedStore, sourceHooks, node.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build source: %w", err)
	}
	sourceHooks.selfRef = sourceFT

	procHooks := &passthroughHooks{}
	procInFilters := mustChain([]filter.Spec{
		{
			Conditions: []filter.ConditionSpec{{Path: "_indicator", Op: filter.OpRegex, Value: "^" + regexp.QuoteMeta(opts.DropPrefix)}},
			Actions:    []filter.Action{filter.ActionDrop},
		},
	})
	procFT, err := node.New("processor", ch, procInFilters, mustChain(nil), sharedStore, procHooks, node.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build processor: %w", err)
	}
	procHooks.selfRef = procFT

	sink := newSinkHooks()
	sinkFT, err := node.New("sink", ch, mustChain(nil), mustChain(nil), sharedStore, sink, node.Options{Logger: logger})
	if err != nil {
		return fmt.Errorf("build sink: %w", err)
	}

	if err := sourceFT.Connect(ctx, nil, true); err != nil {
		return fmt.Errorf("connect source: %w", err)
	}
	if err := procFT.Connect(ctx, []string{"source"}, true); err != nil {
		return fmt.Errorf("connect processor: %w", err)
	}
	if err := sinkFT.Connect(ctx, []string{"processor"}, false); err != nil {
		return fmt.Errorf("connect sink: %w", err)
	}

	for _, ft := range []*node.FT{sourceFT, procFT, sinkFT} {
		if err := ft.Initialize(ctx); err != nil {
			return fmt.Errorf("initialize %s: %w", ft.Name(), err)
		}
		if err := ft.Start(ctx); err != nil {
			return fmt.Errorf("start %s: %w", ft.Name(), err)
		}
	}

	if err := sourceFT.EmitUpdate(ctx, "indicator-1", map[string]any{"type": "IPv4", "confidence": 80}); err != nil {
		return fmt.Errorf("emit indicator-1: %w", err)
	}
	if err := sourceFT.EmitUpdate(ctx, "test-indicator-2", map[string]any{"type": "IPv4", "confidence": 10}); err != nil {
		return fmt.Errorf("emit test-indicator-2: %w", err)
	}
	time.Sleep(50 * time.Millisecond) // let the pub/sub drain loops settle for this demo's printed snapshot

	marker := checkpoint.NewMarker()
	outcome, err := sourceFT.MgmtCheckpoint(ctx, marker)
	if err != nil {
		return fmt.Errorf("checkpoint source: %w", err)
	}
	fmt.Printf("source checkpoint: %s (marker %s)\n", outcome, marker)
	time.Sleep(50 * time.Millisecond)

	for _, ft := range []*node.FT{sourceFT, procFT, sinkFT} {
		info, err := ft.StateInfo(ctx)
		if err != nil {
			return fmt.Errorf("state info %s: %w", ft.Name(), err)
		}
		fmt.Printf("%-10s state=%-10s checkpoint=%q source=%v\n", ft.Name(), info.State, info.Checkpoint, info.IsSource)
	}

	fmt.Println("sink contents:")
	for indicator, value := range sink.snapshot() {
		fmt.Printf("  %s = %v\n", indicator, value)
	}

	return nil
}

func mustChain(specs []filter.Spec) *filter.Chain {
	c, err := filter.NewChain(specs)
	if err != nil {
		panic(err)
	}
	return c
}
