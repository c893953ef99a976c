// Package config binds the driver's ambient tool configuration (spec ch.
// 6): the paths to the assembler, linker, C runtime objects and dynamic
// linker used to turn generated assembly into a runnable ELF binary.
// Every field has a default matching a stock 32-bit-multilib Linux
// install and can be overridden by environment variable, the way the
// teacher's CLI layer leaves tool discovery to its environment rather
// than hard-coding it.
package config

import "github.com/caarlos0/env/v6"

// Toolchain holds the external commands and object files the driver's
// Build mode shells out to (spec ch. 6 "external tools as/ld").
type Toolchain struct {
	As  string `env:"CB_AS" envDefault:"as"`
	Ld  string `env:"CB_LD" envDefault:"ld"`

	Crt1 string `env:"CB_CRT1" envDefault:"/usr/lib/crt1.o"`
	Crti string `env:"CB_CRTI" envDefault:"/usr/lib/crti.o"`
	Crtn string `env:"CB_CRTN" envDefault:"/usr/lib/crtn.o"`

	DynamicLinker string `env:"CB_DYNAMIC_LINKER" envDefault:"/lib/ld-linux.so.2"`

	// LibPath is the colon-separated search path for `import` directives
	// (spec ch. 4.2), mirroring the teacher's own library search path
	// handling in its CLI.
	LibPath []string `env:"CB_LIBPATH" envSeparator:":"`
}

// Load reads a Toolchain from the environment, applying the defaults
// above for anything unset.
func Load() (Toolchain, error) {
	var t Toolchain
	if err := env.Parse(&t); err != nil {
		return Toolchain{}, err
	}
	return t, nil
}
