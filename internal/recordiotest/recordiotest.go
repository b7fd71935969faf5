// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recordiotest builds well-formed (and deliberately malformed)
// container frames for tests. Writing records is out of scope for the
// pipeline itself; this package exists purely so
// recordio, yielder and manifest tests can manufacture fixtures
// without duplicating the frame layout in each _test.go file.
package recordiotest

import (
	"bytes"
	"encoding/binary"

	"github.com/podgorskiy/DareBlopy/internal/recordio"
)

// WriteFrame appends one well-formed frame encoding payload to buf.
func WriteFrame(buf *bytes.Buffer, payload []byte) {
	header := make([]byte, 8+4)
	binary.LittleEndian.PutUint64(header[0:8], uint64(len(payload)))
	binary.LittleEndian.PutUint32(header[8:12], recordio.MaskedCRC32C(header[0:8]))
	buf.Write(header)
	buf.Write(payload)
	footer := make([]byte, 4)
	binary.LittleEndian.PutUint32(footer, recordio.MaskedCRC32C(payload))
	buf.Write(footer)
}

// BuildFile concatenates frames for every payload in payloads into one
// container file's bytes.
func BuildFile(payloads [][]byte) []byte {
	var buf bytes.Buffer
	for _, p := range payloads {
		WriteFrame(&buf, p)
	}
	return buf.Bytes()
}

// CorruptPayloadCRC flips the first byte of the payload CRC of the frame at
// byte offset frameStart within data (data is mutated in place and also
// returned for convenience).
func CorruptPayloadCRC(data []byte, frameStart int) []byte {
	length := binary.LittleEndian.Uint64(data[frameStart : frameStart+8])
	crcOff := frameStart + 12 + int(length)
	data[crcOff] ^= 0xFF
	return data
}
