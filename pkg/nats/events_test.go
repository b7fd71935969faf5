// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package nats_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/podgorskiy/DareBlopy/pkg/nats"
)

func TestEpochCompletedRoundTripsAsJSON(t *testing.T) {
	ev := nats.EpochCompleted{Epoch: 3, RecordsDelivered: 48000, CRCFailures: 1}

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var got nats.EpochCompleted
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, ev, got)
}
