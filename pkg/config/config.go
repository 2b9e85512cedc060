package config

import "github.com/y-shindoh/multi-queue/internal/testbench"

// Config is an alias for testbench.Config. This allows other programs to
// describe a bench workload without pulling in the entire testbench package.
type Config = testbench.Config
