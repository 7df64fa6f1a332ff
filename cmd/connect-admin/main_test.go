package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	cmds := commands()

	for _, name := range []string{
		"migrate",
		"employee-add",
		"employee-list",
		"employee-set-role",
		"employee-remove",
		"check-employee",
	} {
		cmd, ok := cmds[name]
		require.True(t, ok, "command %s missing", name)
		assert.Equal(t, name, cmd.name)
		assert.NotEmpty(t, cmd.description)
		assert.NotNil(t, cmd.run)
	}
}
