// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"

	"github.com/authgate/authgate/pkg/errutil"
)

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("ACCOUNT_DUPLICATE_EMAIL").
		Wrapf(errors.New("duplicate"), "create failed")
	errutil.AssertErrorCode(t, err, "ACCOUNT_DUPLICATE_EMAIL")
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.With("account_id", "01ARZ3").Errorf("update failed")
	errutil.AssertErrorContext(t, err, "account_id", "01ARZ3")
}
