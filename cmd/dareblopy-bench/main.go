// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command dareblopy-bench times the read strategies this module offers
// over a fixed set of record files and prints throughput to stdout, the
// same role run_benchmark.py's tfrecords-ablation pass played for the
// Python/C++ reference implementation.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/podgorskiy/DareBlopy/internal/asyncloader"
	"github.com/podgorskiy/DareBlopy/internal/config"
	"github.com/podgorskiy/DareBlopy/internal/manifest"
	"github.com/podgorskiy/DareBlopy/internal/parser"
	"github.com/podgorskiy/DareBlopy/internal/tensor"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/internal/yielder"
	"github.com/podgorskiy/DareBlopy/pkg/log"
)

type result struct {
	name    string
	records int
	elapsed time.Duration
}

func (r result) String() string {
	rate := float64(r.records) / r.elapsed.Seconds()
	return fmt.Sprintf("%-45s %8d records in %10s  (%.0f records/sec)", r.name, r.records, r.elapsed, rate)
}

func timeit(name string, fn func() (int, error)) result {
	start := time.Now()
	n, err := fn()
	elapsed := time.Since(start)
	if err != nil {
		log.Warnf("%s: %s", name, err.Error())
	}
	return result{name: name, records: n, elapsed: elapsed}
}

func main() {
	var flagConfigFile string
	var flagBatchSize int
	flag.StringVar(&flagConfigFile, "config", "./config.json", "pipeline configuration file")
	flag.IntVar(&flagBatchSize, "batch-size", 32, "batch size for yielder/loader strategies")
	flag.Parse()

	if err := config.Init(flagConfigFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(config.Keys.Paths) == 0 {
		fmt.Fprintln(os.Stderr, "no paths configured; nothing to benchmark")
		os.Exit(1)
	}

	fs := vfs.NewFS(config.Keys.Root)
	paths := config.Keys.Paths

	if config.Keys.Manifest != nil {
		mf, err := manifest.Open(config.Keys.Manifest.DBPath)
		if err != nil {
			log.Warnf("opening manifest: %s", err.Error())
		} else {
			defer mf.Close()
			reportManifest(mf, paths)
		}
	}

	results := []result{
		timeit("BasicYielder, no parsing", func() (int, error) {
			y := yielder.NewBasicYielder(fs, paths)
			defer y.Close()
			return drainRaw(y, flagBatchSize)
		}),
	}

	if len(paths) > 0 {
		results = append(results, timeit("RandomizedYielder, no parsing", func() (int, error) {
			one := 1
			iterationCount := &one
			y, err := yielder.NewRandomizedYielder(fs, paths, 64, 1, 0, iterationCount)
			if err != nil {
				return 0, err
			}
			defer y.Close()
			return drainRaw(y, flagBatchSize)
		}))
	}

	schema, err := exampleSchema()
	if err != nil {
		log.Warnf("skipping parsed benchmarks: building schema: %s", err.Error())
	} else {
		results = append(results, timeit("RandomizedYielder+Parser, serial", func() (int, error) {
			one := 1
			iterationCount := &one
			inner, err := yielder.NewRandomizedYielder(fs, paths, 64, 1, 0, iterationCount)
			if err != nil {
				return 0, err
			}
			defer inner.Close()
			p := parser.NewParser(schema, false, 1)
			py := yielder.NewParsedYielder(inner, p)
			return drainParsed(py, flagBatchSize)
		}))

		results = append(results, timeit("RandomizedYielder+Parser, parallel", func() (int, error) {
			one := 1
			iterationCount := &one
			inner, err := yielder.NewRandomizedYielder(fs, paths, 64, 1, 0, iterationCount)
			if err != nil {
				return 0, err
			}
			defer inner.Close()
			p := parser.NewParser(schema, true, config.Keys.Workers)
			py := yielder.NewParsedYielder(inner, p)
			return drainParsed(py, flagBatchSize)
		}))

		results = append(results, timeit("RandomizedYielder+Parser+AsyncLoader", func() (int, error) {
			one := 1
			iterationCount := &one
			inner, err := yielder.NewRandomizedYielder(fs, paths, 64, 1, 0, iterationCount)
			if err != nil {
				return 0, err
			}
			defer inner.Close()
			p := parser.NewParser(schema, true, config.Keys.Workers)
			py := yielder.NewParsedYielder(inner, p)
			loader := asyncloader.New[[]tensor.Tensor, []tensor.Tensor](py, flagBatchSize, asyncloader.Identity[[]tensor.Tensor], config.Keys.Workers, config.Keys.QueueCapacity)
			defer loader.Close()
			n := 0
			for {
				batch, eos, err := loader.Get()
				if eos {
					return n, nil
				}
				if err != nil {
					return n, err
				}
				if len(batch) > 0 && len(batch[0].Shape) > 0 {
					n += batch[0].Shape[0]
				}
			}
		}))
	}

	fmt.Println("Reading records, no decoding; record count and throughput averaged over one pass.")
	for _, r := range results {
		fmt.Println(r.String())
	}
}

// reportManifest prints the manifest's cached entry counts for paths, so a
// bench run shows whether the cache is warm before timing actual reads.
func reportManifest(mf *manifest.Manifest, paths []string) {
	var known, total int64
	for _, p := range paths {
		st, found, err := mf.Get(p)
		if err != nil {
			log.Warnf("manifest lookup for %s: %s", p, err.Error())
			continue
		}
		if !found {
			continue
		}
		known++
		total += st.EntryCount
	}
	fmt.Printf("manifest cache: %d/%d paths known, %d records\n", known, len(paths), total)
}

func drainRaw(y yielder.Yielder, batchSize int) (int, error) {
	n := 0
	for {
		batch, eos, err := y.NextN(batchSize)
		if eos {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n += len(batch)
	}
}

func drainParsed(y *yielder.ParsedYielder, batchSize int) (int, error) {
	n := 0
	for {
		batch, eos, err := y.NextN(batchSize)
		if eos {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if len(batch) > 0 && len(batch[0].Shape) > 0 {
			n += batch[0].Shape[0]
		}
	}
}

// exampleSchema builds a single-feature scalar Bytes schema so the parsed
// benchmarks can run without a user-supplied schema file; it assumes the
// configured record files hold a "data" bytes feature and delivers each
// record's payload as one bytes element, with no shape imposed on it.
func exampleSchema() (*tensor.Schema, error) {
	return tensor.NewSchema([]tensor.Feature{
		{Name: "data", Spec: tensor.FeatureSpec{Shape: nil, DType: tensor.Bytes}},
	})
}
