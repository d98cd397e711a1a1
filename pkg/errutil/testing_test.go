// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/tsunami-stream/tsunami/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("component", "package").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "component", "package")
}
