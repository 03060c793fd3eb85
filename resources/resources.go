// resources/resources.go
// Copyright(c) 2026 kanview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package resources holds the copies of the shader sources that are
// compiled into the binary so that kanview runs without a resources/
// directory alongside it.
package resources

import "embed"

//go:embed shaders
var FS embed.FS
