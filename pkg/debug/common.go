// Copyright (C) 2025 Uptimer Authors.
// See LICENSE for copying information.

package debug

import "github.com/zeebo/errs"

// Error is default error class for debug package.
var Error = errs.Class("debug")
