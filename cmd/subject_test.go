package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/testpaper/papergen/db/repositories"
	"gitlab.com/testpaper/papergen/internal/config"
)

func TestSubjectCmdLifecycle(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverClover} {
		t.Run(driver, func(t *testing.T) {
			open := opener(testConfig(t, driver))

			out, err := run(t, NewSubjectCmd(open), "add", "Math", "--description", "Algebra")
			require.NoError(t, err)
			assert.Contains(t, out, "Math")
			assert.Contains(t, out, "Algebra")

			_, err = run(t, NewSubjectCmd(open), "add", "Art")
			require.NoError(t, err)

			out, err = run(t, NewSubjectCmd(open), "count")
			require.NoError(t, err)
			assert.Equal(t, "2\n", out)

			out, err = run(t, NewSubjectCmd(open), "list", "--sort", "name")
			require.NoError(t, err)
			assert.Less(t, strings.Index(out, "Art"), strings.Index(out, "Math"))
			assert.Contains(t, out, "page 1 of 1 (2 subjects)")

			out, err = run(t, NewSubjectCmd(open), "list", "--all", "--sort", "name,desc")
			require.NoError(t, err)
			assert.Less(t, strings.Index(out, "Math"), strings.Index(out, "Art"))

			out, err = run(t, NewSubjectCmd(open), "get", "1")
			require.NoError(t, err)
			assert.Contains(t, out, "Math")

			out, err = run(t, NewSubjectCmd(open), "delete", "1", "2")
			require.NoError(t, err)
			assert.Contains(t, out, "deleted 2 subject(s)")

			_, err = run(t, NewSubjectCmd(open), "get", "1")
			assert.ErrorIs(t, err, repositories.NotFoundError)
		})
	}
}

func TestSubjectCmdRejectsBadInput(t *testing.T) {
	open := opener(testConfig(t, config.DriverSQLite))

	_, err := run(t, NewSubjectCmd(open), "get", "abc")
	assert.Error(t, err)

	_, err = run(t, NewSubjectCmd(open), "delete", "0")
	assert.Error(t, err)

	_, err = run(t, NewSubjectCmd(open), "list", "--sort", "name,sideways")
	assert.ErrorIs(t, err, repositories.InvalidDataError)

	_, err = run(t, NewSubjectCmd(open), "add")
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", "42"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 42}, ids)

	_, err = parseIDs([]string{"-1"})
	assert.Error(t, err)
}
