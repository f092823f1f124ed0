// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/cyanite-go/metriccore/internal/configutil"
	"github.com/cyanite-go/metriccore/internal/deadletter"
	"github.com/cyanite-go/metriccore/internal/ingest"
	"github.com/cyanite-go/metriccore/internal/metricstore"
	"github.com/cyanite-go/metriccore/internal/pathindex"
	"github.com/cyanite-go/metriccore/internal/runtimeEnv"
	"github.com/cyanite-go/metriccore/internal/telemetry"
	natsclient "github.com/cyanite-go/metriccore/pkg/nats"
	"github.com/google/gops/agent"
)

// ProgramConfig is the format of the top-level configuration file: one
// section per collaborating subsystem, plus the few process-wide
// settings that do not belong to any single one of them.
type ProgramConfig struct {
	MetricsAddr string          `json:"metrics-addr"`
	NatsSubject string          `json:"nats-subject"`
	PathIndex   json.RawMessage `json:"path-index"`
	MetricStore json.RawMessage `json:"metric-store"`
	Nats        json.RawMessage `json:"nats"`
}

var programConfig = ProgramConfig{
	MetricsAddr: ":8081",
	NatsSubject: "metriccore.samples",
}

func main() {
	var flagConfigFile string
	var flagGops bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Overwrite the global config options by those specified in `config.json`")
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	// See https://github.com/google/gops (Runtime overhead is almost zero)
	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := runtimeEnv.LoadEnv("./.env"); err != nil && !os.IsNotExist(err) {
		cclog.Fatalf("parsing './.env' file failed: %s", err.Error())
	}

	f, err := os.Open(flagConfigFile)
	if err != nil {
		if !os.IsNotExist(err) || flagConfigFile != "./config.json" {
			cclog.Fatal(err.Error())
		}
	} else {
		dec := json.NewDecoder(f)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&programConfig); err != nil {
			cclog.Fatal(err.Error())
		}
		f.Close()
	}

	if err := pathindex.Validate(programConfig.PathIndex); err != nil {
		cclog.Fatalf("invalid path-index config: %s", err.Error())
	}
	if err := metricstore.Validate(programConfig.MetricStore); err != nil {
		cclog.Fatalf("invalid metric-store config: %s", err.Error())
	}
	if err := configutil.Validate(natsclient.ConfigSchema, programConfig.Nats); err != nil {
		cclog.Fatalf("invalid nats config: %s", err.Error())
	}
	if err := natsclient.Init(programConfig.Nats); err != nil {
		cclog.Fatalf("invalid nats config: %s", err.Error())
	}

	var pathCfg pathindex.Config
	if err := json.Unmarshal(programConfig.PathIndex, &pathCfg); err != nil {
		cclog.Fatal(err.Error())
	}
	if pathCfg.Index == "" {
		pathCfg.Index = "cyanite_paths"
	}

	var storeCfg metricstore.Config
	if err := json.Unmarshal(programConfig.MetricStore, &storeCfg); err != nil {
		cclog.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	indexClient, err := pathindex.NewESIndexClient(pathCfg.Addresses, pathCfg.Index)
	if err != nil {
		cclog.Fatalf("building elasticsearch client: %s", err.Error())
	}

	subPathCache := pathindex.NewSubPathCache(pathCfg.CacheCapacity)
	pipeline := pathindex.NewPipeline(indexClient, subPathCache, pathCfg.ChanSize, pathCfg.BatchSize, pathCfg.BatchInterval(), pathCfg.MultiGetRPS)

	backend, err := metricstore.NewBackend(storeCfg)
	if err != nil {
		cclog.Fatalf("connecting to metric store backend: %s", err.Error())
	}

	archive, err := deadletter.NewArchiver(ctx, storeCfg.DeadLetter)
	if err != nil {
		cclog.Fatalf("building dead-letter archiver: %s", err.Error())
	}

	writer := metricstore.NewWriter(backend, archive, storeCfg.ChanSize, storeCfg.BatchSize, storeCfg.BatchInterval())
	rollupCache := metricstore.NewRollupCache(writer, storeCfg.Grace())
	store := metricstore.NewMetricstore(writer, rollupCache, storeCfg.ToRollupSet(), storeCfg.ChanSize)

	stopSweeper, err := rollupCache.StartSweeper(ctx, storeCfg.SweepInterval())
	if err != nil {
		cclog.Fatalf("starting rollup cache sweeper: %s", err.Error())
	}

	natsclient.Connect()
	nc := natsclient.GetClient()
	if nc == nil {
		cclog.Fatal("nats client failed to connect")
	}

	sinks := ingest.Sinks{PathIndex: pipeline.ChannelFor(), Metric: store.ChannelFor()}
	if err := ingest.SubscribeNATS(nc, programConfig.NatsSubject, sinks); err != nil {
		cclog.Fatalf("subscribing to %q: %s", programConfig.NatsSubject, err.Error())
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pipeline.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Run(ctx)
	}()

	metricsSrv := telemetry.Serve(programConfig.MetricsAddr)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(25)
	}
	runtimeEnv.SystemdNotify(true, "running")

	<-sigs
	runtimeEnv.SystemdNotify(false, "shutting down")

	stopSweeper()
	nc.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	telemetry.Shutdown(shutdownCtx, metricsSrv)
	shutdownCancel()

	// Cancel the pipeline and writer's contexts only after the ingress
	// transport is closed. Each batcher then flushes its partial batch
	// and the writer's in-flight commits finish before the backend
	// connection is closed; samples still queued in a channel at the
	// moment of cancellation are not written.
	cancel()
	wg.Wait()

	if err := backend.Close(); err != nil {
		cclog.Errorf("closing metric store backend: %s", err.Error())
	}

	cclog.Info("graceful shutdown completed")
}
