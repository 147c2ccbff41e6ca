package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/logd-io/logd/errors"
	"github.com/logd-io/logd/handler"
	"github.com/logd-io/logd/severity"
	"github.com/logd-io/logd/trace"
)

func TestSettings_ValidateRejectsBadInput(t *testing.T) {
	bad := severity.Severity(99)

	require.Error(t, (&Settings{MinSeverity: &bad}).validate())
	require.Error(t, (&Settings{StackDepths: map[severity.Severity]int{severity.Error: -1}}).validate())
	require.Error(t, (&Settings{StackDepths: map[severity.Severity]int{bad: 4}}).validate())
	require.Error(t, (&Settings{Handlers: []handler.Handler{}}).validate())

	err := (&Settings{Handlers: []handler.Handler{}}).validate()
	require.True(t, errors.IsConfiguration(err))

	require.NoError(t, (&Settings{}).validate())
	require.NoError(t, (&Settings{
		Enabled:     boolPtr(true),
		MinSeverity: sevPtr(severity.Warning),
		StackDepths: map[severity.Severity]int{severity.Error: 0},
	}).validate())
}

func TestSettings_DiffIgnoresUnsuppliedFields(t *testing.T) {
	stored := Settings{
		Enabled:     boolPtr(true),
		MinSeverity: sevPtr(severity.Info),
	}

	require.False(t, stored.diffAgainst(Settings{}).any())
	require.False(t, stored.diffAgainst(Settings{Enabled: boolPtr(true)}).any())

	d := stored.diffAgainst(Settings{Enabled: boolPtr(false)})
	require.True(t, d.enabled)
	require.False(t, d.minSeverity)
	require.True(t, d.any())
}

func TestSettings_DiffComparesCollectionsByContent(t *testing.T) {
	stored := Settings{
		StackDepths: map[severity.Severity]int{severity.Error: 16, severity.Warning: 4},
		TimeFormat:  &handler.TimeFormat{Layout: "15:04:05"},
		StackParser: &trace.ParserConfig{MaxDepth: 32},
		Handlers:    []handler.Handler{handler.NewFile(handler.DefaultFileOptions("/tmp/a.log"))},
	}

	same := Settings{
		StackDepths: map[severity.Severity]int{severity.Warning: 4, severity.Error: 16},
		TimeFormat:  &handler.TimeFormat{Layout: "15:04:05"},
		StackParser: &trace.ParserConfig{MaxDepth: 32},
		Handlers:    []handler.Handler{handler.NewFile(handler.DefaultFileOptions("/tmp/a.log"))},
	}
	require.False(t, stored.diffAgainst(same).any())

	d := stored.diffAgainst(Settings{
		StackDepths: map[severity.Severity]int{severity.Error: 16},
		Handlers:    []handler.Handler{handler.NewFile(handler.DefaultFileOptions("/tmp/b.log"))},
	})
	require.True(t, d.stackDepths)
	require.True(t, d.handlers)
	require.False(t, d.timeFormat)
}

func TestSettings_ApplyClonesCollections(t *testing.T) {
	patch := Settings{
		StackDepths: map[severity.Severity]int{severity.Error: 8},
		Handlers:    []handler.Handler{handler.NewConsole(handler.ConsoleOptions{})},
	}

	var stored Settings
	stored.apply(patch, stored.diffAgainst(patch))

	patch.StackDepths[severity.Error] = 99
	patch.Handlers[0] = nil

	require.Equal(t, 8, stored.StackDepths[severity.Error])
	require.NotNil(t, stored.Handlers[0])
}
