// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package validator

import "github.com/prometheus/client_golang/prometheus"

func (v *Validator) AnalysedChunks() *prometheus.CounterVec { return v.metrics.AnalysedChunks }
func (v *Validator) InvalidChunks() *prometheus.CounterVec  { return v.metrics.InvalidChunks }
func (v *Validator) UnknownChunks() prometheus.Counter      { return v.metrics.UnknownChunks }
