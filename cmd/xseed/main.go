// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := RunRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
