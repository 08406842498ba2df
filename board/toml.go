// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package board

import "github.com/spf13/viper"

// LoadConfig reads a TOML-formatted configuration named "beacon" from the
// given directory (or the working directory if dir is empty), falling back
// to DefaultConfig if no file is found.
func LoadConfig(dir string) (Config, bool) {
	v := viper.New()
	v.SetConfigName("beacon")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig(), false
	}
	cfg := DefaultConfig()
	if err := v.UnmarshalKey("board", &cfg); err != nil {
		return DefaultConfig(), false
	}
	return cfg, true
}
