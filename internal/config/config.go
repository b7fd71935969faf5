// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates the pipeline's JSON configuration:
// the dataset's root and path list, shuffle/loader tuning knobs, and the
// optional S3, manifest, and NATS sections.
package config

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

// S3Config points the vfs S3 backend at a bucket.
type S3Config struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
}

// ManifestConfig configures the sqlite file-stats cache.
type ManifestConfig struct {
	DBPath             string `json:"db_path"`
	RevalidateInterval string `json:"revalidate_interval"`
}

// NatsConfig configures optional epoch-completion event publishing.
type NatsConfig struct {
	Address       string `json:"address"`
	Username      string `json:"username"`
	Password      string `json:"password"`
	CredsFilePath string `json:"creds_file_path"`
	Subject       string `json:"subject"`
}

// Config is the full pipeline configuration.
type Config struct {
	Root           string          `json:"root"`
	Paths          []string        `json:"paths"`
	BufferCapacity int             `json:"buffer_capacity"`
	Seed           uint64          `json:"seed"`
	Workers        int             `json:"workers"`
	QueueCapacity  int             `json:"queue_capacity"`
	BatchSize      int             `json:"batch_size"`
	StatusAddr     string          `json:"status_addr"`
	S3             *S3Config       `json:"s3,omitempty"`
	Manifest       *ManifestConfig `json:"manifest,omitempty"`
	Nats           *NatsConfig     `json:"nats,omitempty"`
	RecordFmtPath  string          `json:"recordfmt_path,omitempty"`
}

// Keys holds the process-wide configuration, seeded with defaults and
// overwritten by Init.
var Keys = Config{
	Root:           ".",
	BufferCapacity: 1024,
	Workers:        4,
	QueueCapacity:  8,
	BatchSize:      32,
	StatusAddr:     ":8090",
}

// Init reads flagConfigFile, validates it against the embedded schema,
// and decodes it into Keys. A missing file is not an error: Keys keeps
// its defaults. Init is appropriate for main-package callers only; it is
// not called from any library package.
func Init(flagConfigFile string) error {
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errs.WithPath(errs.Io, "config.Init", flagConfigFile, err)
	}

	if err := Validate(bytes.NewReader(raw)); err != nil {
		return errs.WithPath(errs.SchemaInvalid, "config.Init", flagConfigFile, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return errs.WithPath(errs.SchemaInvalid, "config.Init", flagConfigFile, err)
	}

	if len(Keys.Paths) == 0 {
		return errs.WithPath(errs.SchemaInvalid, "config.Init", flagConfigFile, nil)
	}
	return nil
}
