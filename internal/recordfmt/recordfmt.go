// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recordfmt writes per-epoch, per-feature batch statistics to an
// Avro Object Container File, so a long training run leaves a compact,
// appendable audit trail of what each Loader delivered. This has nothing
// to do with the Example wire codec in internal/example, which predates
// and is unrelated to Avro; recordfmt is purely an optional sink for
// observability snapshots.
package recordfmt

import (
	"bufio"
	"io"
	"os"

	"github.com/linkedin/goavro/v2"

	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

const schemaJSON = `{
	"type": "record",
	"name": "FeatureBatchStat",
	"fields": [
		{"name": "epoch", "type": "long"},
		{"name": "batch_index", "type": "long"},
		{"name": "feature", "type": "string"},
		{"name": "count", "type": "long"},
		{"name": "missing", "type": "long"}
	]
}`

// FeatureStat is one feature's summary for one delivered batch.
type FeatureStat struct {
	Epoch      int64
	BatchIndex int64
	Feature    string
	Count      int64
	Missing    int64
}

func (s FeatureStat) toRecord() map[string]any {
	return map[string]any{
		"epoch":       s.Epoch,
		"batch_index": s.BatchIndex,
		"feature":     s.Feature,
		"count":       s.Count,
		"missing":     s.Missing,
	}
}

func fromRecord(r map[string]any) FeatureStat {
	return FeatureStat{
		Epoch:      r["epoch"].(int64),
		BatchIndex: r["batch_index"].(int64),
		Feature:    r["feature"].(string),
		Count:      r["count"].(int64),
		Missing:    r["missing"].(int64),
	}
}

// Writer appends FeatureStat rows to an Avro OCF file, deflate-compressed
// the same way an avro checkpoint file is, via one goavro.OCFWriter per
// open file.
type Writer struct {
	f   *os.File
	ocf *goavro.OCFWriter
}

// NewWriter creates (or truncates) path and prepares it for Append calls.
func NewWriter(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, errs.WithPath(errs.Io, "recordfmt.NewWriter", path, err)
	}

	ocf, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               f,
		Schema:          schemaJSON,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		f.Close()
		return nil, errs.WithPath(errs.Io, "recordfmt.NewWriter", path, err)
	}

	return &Writer{f: f, ocf: ocf}, nil
}

// Append writes one row per stat. A nil or empty stats is a no-op.
func (w *Writer) Append(stats []FeatureStat) error {
	if len(stats) == 0 {
		return nil
	}
	records := make([]map[string]any, len(stats))
	for i, s := range stats {
		records[i] = s.toRecord()
	}
	if err := w.ocf.Append(records); err != nil {
		return errs.New(errs.Io, "recordfmt.Append", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	return w.f.Close()
}

// ReadAll reads every FeatureStat row out of an Avro OCF file written by
// Writer. Intended for tests and offline inspection, not the hot path.
func ReadAll(path string) ([]FeatureStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.WithPath(errs.Io, "recordfmt.ReadAll", path, err)
	}
	defer f.Close()

	ocfReader, err := goavro.NewOCFReader(bufio.NewReader(f))
	if err != nil {
		return nil, errs.WithPath(errs.Io, "recordfmt.ReadAll", path, err)
	}

	var out []FeatureStat
	for ocfReader.Scan() {
		datum, err := ocfReader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errs.WithPath(errs.Io, "recordfmt.ReadAll", path, err)
		}
		record, ok := datum.(map[string]any)
		if !ok {
			return nil, errs.WithPath(errs.Corrupt, "recordfmt.ReadAll", path, nil)
		}
		out = append(out, fromRecord(record))
	}
	return out, nil
}
