// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err, "should read embedded migrations directory")

	assert.GreaterOrEqual(t, len(entries), 2, "each migration needs an up and a down file")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	assert.True(t, fileNames["000001_init.up.sql"], "should contain 000001_init.up.sql")
	assert.True(t, fileNames["000001_init.down.sql"], "should contain 000001_init.down.sql")

	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		assert.True(t, pattern.MatchString(entry.Name()),
			"file %s should match pattern NNNNNN_name.(up|down).sql", entry.Name())
	}
}
