// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recordio_test

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/internal/recordio"
	"github.com/podgorskiy/DareBlopy/internal/recordiotest"
	"github.com/podgorskiy/DareBlopy/internal/vfs"
	"github.com/podgorskiy/DareBlopy/pkg/errs"
)

func TestReaderRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0x00, 0x01, 0x02},
		[]byte("a second, longer record"),
		{},
	}
	data := recordiotest.BuildFile(payloads)

	r, err := recordio.NewReader(vfs.NewMemSource(data), recordio.Options{})
	require.NoError(t, err)
	defer r.Close()

	var got [][]byte
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}
	require.Equal(t, payloads, got)
}

func TestReaderEmptyFile(t *testing.T) {
	r, err := recordio.NewReader(vfs.NewMemSource(nil), recordio.Options{})
	require.NoError(t, err)
	_, err = r.Next()
	require.Equal(t, io.EOF, err)
}

func TestReaderMetadataEmptyFile(t *testing.T) {
	r, err := recordio.NewReader(vfs.NewMemSource(nil), recordio.Options{})
	require.NoError(t, err)
	fileSize, dataSize, count, err := r.Metadata()
	require.NoError(t, err)
	require.Equal(t, int64(0), fileSize)
	require.Equal(t, int64(0), dataSize)
	require.Equal(t, int64(0), count)
}

func TestReaderMetadata(t *testing.T) {
	payloads := [][]byte{{1, 2, 3}, {4, 5}}
	data := recordiotest.BuildFile(payloads)
	r, err := recordio.NewReader(vfs.NewMemSource(data), recordio.Options{})
	require.NoError(t, err)
	fileSize, dataSize, count, err := r.Metadata()
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), fileSize)
	require.Equal(t, int64(5), dataSize)
	require.Equal(t, int64(2), count)
}

func TestReaderTamperedCRCIsCorrupt(t *testing.T) {
	data := recordiotest.BuildFile([][]byte{{0x00, 0x01, 0x02}})
	tampered := recordiotest.CorruptPayloadCRC(append([]byte(nil), data...), 0)

	r, err := recordio.NewReader(vfs.NewMemSource(tampered), recordio.Options{})
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
	var e *errs.Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, errs.Corrupt, e.Kind)

	// The reader stays failed for any subsequent call.
	_, err = r.Next()
	require.Error(t, err)
}

func TestReaderTruncatedFrameIsCorrupt(t *testing.T) {
	data := recordiotest.BuildFile([][]byte{{1, 2, 3, 4, 5}})
	truncated := data[:len(data)-3]

	r, err := recordio.NewReader(vfs.NewMemSource(truncated), recordio.Options{})
	require.NoError(t, err)
	_, err = r.Next()
	require.Error(t, err)
	require.NotEqual(t, io.EOF, err)
}

func TestNewReaderRejectsRecover(t *testing.T) {
	_, err := recordio.NewReader(vfs.NewMemSource(nil), recordio.Options{Recover: true})
	require.Error(t, err)
}
