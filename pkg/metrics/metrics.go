// Copyright 2020 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics collects the prometheus collectors exposed by the
// components of the module.
package metrics

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace is prefixed before every metric. If it is changed, it must be done
// before any metrics collector is registered.
const Namespace = "nectar"

// Collector is implemented by components that expose prometheus metrics.
type Collector interface {
	Metrics() []prometheus.Collector
}

// PrometheusCollectorsFromFields returns the exported, initialised
// prometheus collector fields of the struct that i points to.
func PrometheusCollectorsFromFields(i interface{}) (cs []prometheus.Collector) {
	v := reflect.Indirect(reflect.ValueOf(i))
	if v.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < v.NumField(); i++ {
		if !v.Field(i).CanInterface() {
			continue
		}
		if u, ok := v.Field(i).Interface().(prometheus.Collector); ok && u != nil {
			if f := v.Field(i); f.Kind() == reflect.Ptr && f.IsNil() {
				continue
			}
			cs = append(cs, u)
		}
	}
	return cs
}

// Register registers the collectors of every component with r.
func Register(r prometheus.Registerer, components ...Collector) error {
	for _, c := range components {
		for _, m := range c.Metrics() {
			if err := r.Register(m); err != nil {
				return err
			}
		}
	}
	return nil
}
