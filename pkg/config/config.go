// Copyright 2021 The Swarm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the tunables of the hashing and validation
// components and reads them with viper.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethersphere/nectar/pkg/logging"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	OptionNameBMTPoolCapacity      = "bmt-pool-capacity"
	OptionNameBMTParallelThreshold = "bmt-parallel-threshold"
	OptionNameBMTHashWorkers       = "bmt-hash-workers"
	OptionNameVerbosity            = "verbosity"
)

// EnvPrefix is the prefix of environment variables overriding options.
const EnvPrefix = "nectar"

var ErrInvalidOption = errors.New("invalid option")

// Options configure the BMT hasher pool and the logger of the validator.
type Options struct {
	// HasherPoolCapacity is the number of trees kept by the hasher pool.
	HasherPoolCapacity int
	// ParallelThreshold is the data length from which the lowest tree
	// levels are hashed concurrently.
	ParallelThreshold int
	// HashWorkers is the number of goroutines on the concurrent path.
	HashWorkers int
	// Verbosity is the logging level name or number.
	Verbosity string
}

// Default returns the built in options.
func Default() Options {
	return Options{
		HasherPoolCapacity: 8,
		ParallelThreshold:  2048,
		HashWorkers:        8,
		Verbosity:          "info",
	}
}

// SetDefaults registers the default values of all options with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(OptionNameBMTPoolCapacity, d.HasherPoolCapacity)
	v.SetDefault(OptionNameBMTParallelThreshold, d.ParallelThreshold)
	v.SetDefault(OptionNameBMTHashWorkers, d.HashWorkers)
	v.SetDefault(OptionNameVerbosity, d.Verbosity)
}

// FromViper reads the options from v, falling back to the defaults for
// unset keys.
func FromViper(v *viper.Viper) (Options, error) {
	SetDefaults(v)
	o := Options{
		HasherPoolCapacity: v.GetInt(OptionNameBMTPoolCapacity),
		ParallelThreshold:  v.GetInt(OptionNameBMTParallelThreshold),
		HashWorkers:        v.GetInt(OptionNameBMTHashWorkers),
		Verbosity:          v.GetString(OptionNameVerbosity),
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadFile reads options from the config file at path on fs. The config
// type is taken from the file extension. Environment variables prefixed
// with EnvPrefix take precedence.
func LoadFile(fs afero.Fs, path string) (Options, error) {
	v := newViper()
	v.SetFs(fs)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Options{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return FromViper(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return v
}

// Load reads options from a config of the given type (for example "yaml")
// and from environment variables prefixed with EnvPrefix.
func Load(r io.Reader, configType string) (Options, error) {
	v := newViper()
	if r != nil {
		v.SetConfigType(configType)
		if err := v.ReadConfig(r); err != nil {
			return Options{}, fmt.Errorf("read config: %w", err)
		}
	}
	return FromViper(v)
}

// Validate checks that the numeric options are positive and that the
// verbosity is known.
func (o Options) Validate() error {
	if o.HasherPoolCapacity <= 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidOption, OptionNameBMTPoolCapacity, o.HasherPoolCapacity)
	}
	if o.ParallelThreshold <= 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidOption, OptionNameBMTParallelThreshold, o.ParallelThreshold)
	}
	if o.HashWorkers <= 0 {
		return fmt.Errorf("%w: %s %d", ErrInvalidOption, OptionNameBMTHashWorkers, o.HashWorkers)
	}
	if _, _, err := logging.ParseVerbosity(o.Verbosity); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return nil
}

// NewLogger returns a logger writing to w at the configured verbosity.
func (o Options) NewLogger(w io.Writer) (logging.Logger, error) {
	return logging.NewWithVerbosity(w, o.Verbosity)
}
