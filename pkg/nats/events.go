// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of dareblopy.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package nats

import "encoding/json"

// EpochCompleted is published when an AsyncLoader's upstream yielder
// reports end-of-stream for one epoch, so other processes (a training
// supervisor, a dashboard) can react without polling /stats.
type EpochCompleted struct {
	Epoch            uint64 `json:"epoch"`
	RecordsDelivered int64  `json:"records_delivered"`
	CRCFailures      int64  `json:"crc_failures"`
}

// PublishEpochCompleted marshals ev and publishes it to subject.
func (c *Client) PublishEpochCompleted(subject string, ev EpochCompleted) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return c.Publish(subject, data)
}
