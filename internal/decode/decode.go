// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package decode names the boundary between this pipeline and JPEG
// decoding, which is out of scope here: any bytes-feature payload that
// happens to hold an encoded image is delivered to the caller untouched,
// as a Bytes tensor element (or, under a Uint8 projection, as raw uint8
// values), for a native decoder to consume
// downstream. This package exists only so that boundary has a named type
// instead of being an implicit convention.
package decode

// ImageDecoder turns an encoded image payload into a flat pixel buffer
// of the given shape. No implementation lives in this module; a caller
// that wants decoding wires in a real decoder (cgo libjpeg-turbo binding,
// a pure-Go JPEG decoder, a GPU decode library) behind this interface.
type ImageDecoder interface {
	// Decode decodes encoded into a row-major pixel buffer matching
	// wantShape (e.g. [H, W, C]), returning an error if encoded cannot
	// be decoded into exactly that shape.
	Decode(encoded []byte, wantShape []int) ([]byte, error)
}
