// Copyright 2026 The vbsim Authors
// Licensed under the MIT license. See license text in the LICENSE file.

// Package rtl provides the designs driven by the testbench programs, built
// from hwlib parts.
//
package rtl
