// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command dareblopy-statusd wraps a running AsyncLoader in an HTTP status
// surface: /healthz, /metrics (Prometheus), and /stats (JSON throughput
// snapshot). It reads records but does not parse them into tensors, since
// what it reports is pipeline throughput, not training data itself.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/gops/agent"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/podgorskiy/DareBlopy/internal/asyncloader"
	"github.com/podgorskiy/DareBlopy/internal/config"
	"github.com/podgorskiy/DareBlopy/internal/manifest"
	"github.com/podgorskiy/DareBlopy/internal/recordfmt"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/internal/yielder"
	"github.com/podgorskiy/DareBlopy/pkg/log"
	"github.com/podgorskiy/DareBlopy/pkg/metrics"
	"github.com/podgorskiy/DareBlopy/pkg/nats"
)

// status is the /stats payload, kept as plain atomics rather than a
// mutex-guarded struct since every field is written by exactly one pump
// goroutine and read by many HTTP handlers.
type status struct {
	recordsDelivered atomic.Int64
	crcFailures      atomic.Int64
	currentEpoch     atomic.Uint64
	startedAt        time.Time
}

// snapshot reports live pump counters alongside the manifest's cached
// view of how many records the configured paths hold in total, so
// /stats can show progress against a known denominator without
// re-scanning every file on every request.
func (s *status) snapshot(mf *manifest.Manifest, paths []string) map[string]any {
	elapsed := time.Since(s.startedAt).Seconds()
	delivered := s.recordsDelivered.Load()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(delivered) / elapsed
	}

	var knownTotalRecords int64
	knownPaths := 0
	if mf != nil {
		for _, p := range paths {
			st, found, err := mf.Get(p)
			if err != nil {
				log.Warnf("manifest lookup for %s: %s", p, err.Error())
				continue
			}
			if !found {
				continue
			}
			knownTotalRecords += st.EntryCount
			knownPaths++
		}
	}

	return map[string]any{
		"records_delivered":   delivered,
		"records_per_sec":     rate,
		"crc_failures":        s.crcFailures.Load(),
		"current_epoch":       s.currentEpoch.Load(),
		"known_total_records": knownTotalRecords,
		"known_paths":         knownPaths,
		"configured_paths":    len(paths),
	}
}

func main() {
	var flagConfigFile string
	var flagGops bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "pipeline configuration file")
	flag.BoolVar(&flagGops, "gops", false, "listen via github.com/google/gops/agent (for debugging)")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			log.Abortf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("loading .env failed: %s", err.Error())
	}

	if err := config.Init(flagConfigFile); err != nil {
		log.Abort(err)
	}

	fs := vfs.NewFS(config.Keys.Root)
	if config.Keys.S3 != nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			log.Abortf("loading AWS config: %s", err.Error())
		}
		client := s3.NewFromConfig(awsCfg)
		fs.AddBackend(vfs.NewS3Backend(client, config.Keys.S3.Bucket, config.Keys.S3.Prefix))
	}

	var mf *manifest.Manifest
	if config.Keys.Manifest != nil {
		var err error
		mf, err = manifest.Open(config.Keys.Manifest.DBPath)
		if err != nil {
			log.Abort(err)
		}
		defer mf.Close()

		interval := 15 * time.Minute
		if config.Keys.Manifest.RevalidateInterval != "" {
			if d, err := time.ParseDuration(config.Keys.Manifest.RevalidateInterval); err == nil {
				interval = d
			} else {
				log.Warnf("invalid manifest.revalidate_interval %q: %s", config.Keys.Manifest.RevalidateInterval, err.Error())
			}
		}
		r, err := manifest.StartRevalidator(mf, fs, config.Keys.Paths, interval)
		if err != nil {
			log.Abort(err)
		}
		defer r.Stop()
	}

	var natsClient *nats.Client
	if config.Keys.Nats != nil {
		var err error
		natsClient, err = nats.NewClient(config.Keys.Nats)
		if err != nil {
			log.Warnf("NATS connect failed: %s", err.Error())
		} else {
			defer natsClient.Close()
		}
	}

	mc := metrics.NewCollector()

	var rfWriter *recordfmt.Writer
	var rfMu sync.Mutex
	var rfBuf []recordfmt.FeatureStat
	var batchIndex atomic.Int64
	rfDone := make(chan struct{})
	if config.Keys.RecordFmtPath != "" {
		var err error
		rfWriter, err = recordfmt.NewWriter(config.Keys.RecordFmtPath)
		if err != nil {
			log.Warnf("opening recordfmt sink: %s", err.Error())
			rfWriter = nil
		} else {
			defer rfWriter.Close()
			flush := func() {
				rfMu.Lock()
				defer rfMu.Unlock()
				if len(rfBuf) == 0 {
					return
				}
				if err := rfWriter.Append(rfBuf); err != nil {
					log.Warnf("recordfmt flush: %s", err.Error())
				}
				rfBuf = rfBuf[:0]
			}
			ticker := time.NewTicker(30 * time.Second)
			go func() {
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						flush()
					case <-rfDone:
						flush()
						return
					}
				}
			}()
		}
	}

	var iterationCount *int
	up, err := yielder.NewRandomizedYielder(fs, config.Keys.Paths, config.Keys.BufferCapacity, config.Keys.Seed, 0, iterationCount)
	if err != nil {
		log.Abort(err)
	}
	defer up.Close()

	loader := asyncloader.New[[][]byte, [][]byte](up, config.Keys.BatchSize, asyncloader.Identity[[][]byte], config.Keys.Workers, config.Keys.QueueCapacity, mc)

	st := &status{startedAt: time.Now()}
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for {
			batch, eos, err := loader.Get()
			if eos {
				if natsClient != nil && config.Keys.Nats.Subject != "" {
					natsClient.PublishEpochCompleted(config.Keys.Nats.Subject, nats.EpochCompleted{
						Epoch:            st.currentEpoch.Load(),
						RecordsDelivered: st.recordsDelivered.Load(),
						CRCFailures:      st.crcFailures.Load(),
					})
				}
				return
			}
			if err != nil {
				st.crcFailures.Add(1)
				continue
			}
			st.recordsDelivered.Add(int64(len(batch)))

			if rfWriter != nil {
				rfMu.Lock()
				rfBuf = append(rfBuf, recordfmt.FeatureStat{
					Epoch:      int64(st.currentEpoch.Load()),
					BatchIndex: batchIndex.Add(1),
					Feature:    "raw_records",
					Count:      int64(len(batch)),
					Missing:    0,
				})
				rfMu.Unlock()
			}
		}
	}()

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		select {
		case <-pumpDone:
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}
	})
	r.Handle("/metrics", mc.Handler())
	r.HandleFunc("/stats", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(st.snapshot(mf, config.Keys.Paths))
	})

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))

	server := &http.Server{
		Addr:         config.Keys.StatusAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", config.Keys.StatusAddr)
	if err != nil {
		log.Abort(err)
	}

	go func() {
		log.Infof("status server listening at %s", config.Keys.StatusAddr)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Abort(err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Info("shutting down")
	loader.Close()
	if rfWriter != nil {
		close(rfDone)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
