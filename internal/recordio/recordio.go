// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recordio decodes the length-prefixed, CRC-protected container
// format: each record is framed as
//
//	u64 length
//	u32 length_masked_crc32c
//	u8[length] payload
//	u32 payload_masked_crc32c
//
// little-endian throughout, CRC-32C (Castagnoli) with Google's masking
// transform. A CRC failure halts the reader for the rest of that file; this
// this reader does not implement frame-skip recovery.
package recordio

import (
	"bufio"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
	"github.com/podgorskiy/DareBlopy/pkg/metrics"
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// maskCRC applies the masking transform used throughout the Example
// container family so that masked CRCs of structurally similar data don't
// collide as often as raw CRCs would.
func maskCRC(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + 0xA282EAD8
}

func crc32c(data []byte) uint32 {
	return maskCRC(crc32.Checksum(data, castagnoli))
}

// MaskedCRC32C exposes the frame checksum function for fixture builders
// (see internal/recordiotest) that need to produce well-formed frames.
func MaskedCRC32C(data []byte) uint32 {
	return crc32c(data)
}

// Options configures a Reader. Recover is reserved for a future
// frame-skip-on-corruption mode; setting it true is rejected today.
// Metrics is optional; a nil Collector leaves records read and CRC
// failures unreported.
type Options struct {
	Recover bool
	Metrics *metrics.Collector
}

// Reader decodes one container file into an ordered, non-restartable
// sequence of Records. Create with NewReader; call Next in a loop until it
// returns io.EOF (clean end of file) or a *errs.Error (Corrupt/Io).
type Reader struct {
	bs  vfs.ByteSource
	br  *bufio.Reader
	opt Options
	// done is set once Next has returned a terminal error (including
	// io.EOF); further calls keep returning it without touching bs again.
	done error
}

const headerLen = 8 + 4 // u64 length + u32 masked crc

// NewReader wraps bs. bs is owned by the Reader and closed only when Close
// is called; Next does not close it, even on a terminal state, so callers
// must Close explicitly.
func NewReader(bs vfs.ByteSource, opt Options) (*Reader, error) {
	if opt.Recover {
		return nil, errs.New(errs.SchemaInvalid, "recordio.NewReader", nil)
	}
	return &Reader{bs: bs, br: bufio.NewReaderSize(bs, 64*1024), opt: opt}, nil
}

// Close releases the underlying ByteSource.
func (r *Reader) Close() error {
	return r.bs.Close()
}

// Next returns the next record's payload, a fresh byte slice the caller
// owns outright. It returns io.EOF exactly when the file ends on a frame
// boundary; any other error is a *errs.Error with Kind Io or Corrupt, and
// the Reader yields no further records afterwards.
func (r *Reader) Next() ([]byte, error) {
	if r.done != nil {
		return nil, r.done
	}

	header := make([]byte, headerLen)
	n, err := io.ReadFull(r.br, header)
	if err != nil {
		if err == io.EOF && n == 0 {
			r.done = io.EOF
			return nil, io.EOF
		}
		// Any partial header, or length CRC mismatch below, is a
		// truncated/corrupt frame.
		r.done = r.corrupt(err)
		return nil, r.done
	}

	length := binary.LittleEndian.Uint64(header[0:8])
	wantLenCRC := binary.LittleEndian.Uint32(header[8:12])
	gotLenCRC := crc32c(header[0:8])
	if gotLenCRC != wantLenCRC {
		r.done = r.corrupt(nil)
		return nil, r.done
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.br, payload); err != nil {
		r.done = r.corrupt(err)
		return nil, r.done
	}

	footer := make([]byte, 4)
	if _, err := io.ReadFull(r.br, footer); err != nil {
		r.done = r.corrupt(err)
		return nil, r.done
	}
	wantPayloadCRC := binary.LittleEndian.Uint32(footer)
	if crc32c(payload) != wantPayloadCRC {
		r.done = r.corrupt(nil)
		return nil, r.done
	}

	if r.opt.Metrics != nil {
		r.opt.Metrics.RecordsRead.Inc()
	}
	return payload, nil
}

// corrupt records a CRC-failures metric (if a Collector is configured)
// and builds the terminal error Next returns from here on.
func (r *Reader) corrupt(cause error) error {
	if r.opt.Metrics != nil {
		r.opt.Metrics.CRCFailures.Inc()
	}
	return errs.New(errs.Corrupt, "recordio.Next", cause)
}

// Metadata scans the whole file to report its size, the sum of payload
// lengths, and the number of records. It consumes the Reader: call it
// before any Next calls, on a Reader you don't intend to iterate normally
// afterwards (open a second Reader on the same path if you need both).
func (r *Reader) Metadata() (fileSize, dataSize, entryCount int64, err error) {
	fileSize, err = r.bs.Size()
	if err != nil {
		return 0, 0, 0, errs.New(errs.Io, "recordio.Metadata", err)
	}
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fileSize, dataSize, entryCount, err
		}
		dataSize += int64(len(rec))
		entryCount++
	}
	return fileSize, dataSize, entryCount, nil
}
