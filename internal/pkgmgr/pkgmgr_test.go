package pkgmgr

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modu-ai/pkgkit/internal/resilience"
)

type call struct {
	dir  string
	bin  string
	args []string
}

func recorder(out string, err error) (RunFunc, *[]call) {
	var calls []call
	return func(_ context.Context, dir, bin string, args ...string) ([]byte, error) {
		calls = append(calls, call{dir: dir, bin: bin, args: args})
		return []byte(out), err
	}, &calls
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New("deno")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestCLI_AddDev(t *testing.T) {
	tests := []struct {
		manager string
		version string
		want    string
	}{
		{"pnpm", "", "add -D vitest"},
		{"pnpm", "^3.0.0", "add -D vitest@^3.0.0"},
		{"npm", "", "install --save-dev vitest"},
		{"yarn", "", "add --dev vitest"},
		{"bun", "", "add -D vitest"},
	}
	for _, tt := range tests {
		t.Run(tt.manager+tt.version, func(t *testing.T) {
			run, calls := recorder("", nil)
			c, err := New(tt.manager, WithRunner(run))
			require.NoError(t, err)

			installed, err := c.AddDev(context.Background(), "/pkg", "vitest", tt.version)
			require.NoError(t, err)
			assert.True(t, installed)
			require.Len(t, *calls, 1)
			assert.Equal(t, "/pkg", (*calls)[0].dir)
			assert.Equal(t, tt.manager, (*calls)[0].bin)
			assert.Equal(t, tt.want, strings.Join((*calls)[0].args, " "))
		})
	}
}

func TestCLI_AddDev_AlreadyInstalled(t *testing.T) {
	run, _ := recorder("ERR_PNPM_ADDING_TO_ROOT vitest is already a dependency", errors.New("exit status 1"))
	c, err := New("pnpm", WithRunner(run))
	require.NoError(t, err)

	installed, err := c.AddDev(context.Background(), "/pkg", "vitest", "")
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestCLI_AddDev_Failure(t *testing.T) {
	cause := errors.New("exit status 1")
	run, _ := recorder("network unreachable", cause)
	c, err := New("pnpm", WithRunner(run))
	require.NoError(t, err)

	_, err = c.AddDev(context.Background(), "/pkg", "vitest", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network unreachable")
}

func TestCLI_Remove(t *testing.T) {
	run, calls := recorder("", nil)
	c, err := New("npm", WithRunner(run))
	require.NoError(t, err)

	removed, err := c.Remove(context.Background(), "/pkg", "prettier")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"uninstall", "prettier"}, (*calls)[0].args)

	notThere, _ := recorder("Cannot remove prettier: not present in package.json", errors.New("exit status 1"))
	c, err = New("pnpm", WithRunner(notThere))
	require.NoError(t, err)
	removed, err = c.Remove(context.Background(), "/pkg", "prettier")
	require.NoError(t, err)
	assert.False(t, removed)
}

func fastRetry() Option {
	return WithRetry(resilience.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
}

func TestCLI_AddDev_RetriesTransientFailure(t *testing.T) {
	attempts := 0
	run := func(context.Context, string, string, ...string) ([]byte, error) {
		attempts++
		if attempts == 1 {
			return []byte("ETIMEDOUT registry.npmjs.org"), errors.New("exit status 1")
		}
		return nil, nil
	}
	c, err := New("pnpm", WithRunner(run), fastRetry())
	require.NoError(t, err)

	installed, err := c.AddDev(context.Background(), "/pkg", "vitest", "")
	require.NoError(t, err)
	assert.True(t, installed)
	assert.Equal(t, 2, attempts)
}

func TestCLI_RetryStopsOnSettledOutput(t *testing.T) {
	run, calls := recorder("vitest is already a dependency", errors.New("exit status 1"))
	c, err := New("pnpm", WithRunner(run), fastRetry())
	require.NoError(t, err)

	installed, err := c.AddDev(context.Background(), "/pkg", "vitest", "")
	require.NoError(t, err)
	assert.False(t, installed)
	assert.Len(t, *calls, 1)

	missing, calls := recorder("", ErrNotFound)
	c, err = New("pnpm", WithRunner(missing), fastRetry())
	require.NoError(t, err)
	_, err = c.Remove(context.Background(), "/pkg", "prettier")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, *calls, 1)
}

func TestCLI_RetryExhausted(t *testing.T) {
	run, calls := recorder("network unreachable", errors.New("exit status 1"))
	c, err := New("pnpm", WithRunner(run), fastRetry())
	require.NoError(t, err)

	_, err = c.AddDev(context.Background(), "/pkg", "vitest", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network unreachable")
	assert.Len(t, *calls, 3)
}
