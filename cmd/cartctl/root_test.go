package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (cartView, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--json"))

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return cartView{}, err
	}

	var view cartView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	return view, nil
}

func TestCartctl_PizzaSodaScenario(t *testing.T) {
	for _, driver := range []string{driverSQLite, driverFile} {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			slot := []string{"--driver", driver, "--sqlite-path", filepath.Join(dir, "cart.db"), "--dir", dir}

			_, err := run(t, append([]string{"add", "1", "--name", "Pizza", "--price", "9.5", "--quantity", "2"}, slot...)...)
			require.NoError(t, err)
			view, err := run(t, append([]string{"add", "2", "--name", "Soda", "--price", "1.5"}, slot...)...)
			require.NoError(t, err)
			require.Equal(t, 3, view.TotalItems)
			require.Equal(t, "20.50", view.TotalPrice)
			require.True(t, view.Persisted)

			view, err = run(t, append([]string{"dec", "1"}, slot...)...)
			require.NoError(t, err)
			require.Equal(t, 2, view.TotalItems)
			require.Equal(t, "11.00", view.TotalPrice)

			view, err = run(t, append([]string{"remove", "2"}, slot...)...)
			require.NoError(t, err)
			require.Equal(t, 1, view.TotalItems)
			require.Equal(t, "9.50", view.TotalPrice)

			// Новый процесс видит сохранённое состояние.
			view, err = run(t, append([]string{"show"}, slot...)...)
			require.NoError(t, err)
			require.Len(t, view.Items, 1)
			require.Equal(t, "Pizza", view.Items[0].Name)

			view, err = run(t, append([]string{"clear"}, slot...)...)
			require.NoError(t, err)
			require.Empty(t, view.Items)
		})
	}
}

func TestCartctl_AddFromCatalog(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join("..", "..", "configs", "catalog.yaml")

	view, err := run(t, "add", "food-margherita", "--catalog", seed, "--driver", driverFile, "--dir", dir)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.NotEmpty(t, view.Items[0].Name)
	require.Equal(t, 1, view.Items[0].Quantity)
}

func TestCartctl_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "add", "1", "--driver", driverFile, "--dir", dir)
	require.ErrorContains(t, err, "--price is required")

	_, err = run(t, "add", "1", "--price", "abc", "--driver", driverFile, "--dir", dir)
	require.ErrorContains(t, err, "invalid price")

	_, err = run(t, "add", "1", "--price", "-1", "--driver", driverFile, "--dir", dir)
	require.ErrorContains(t, err, "must not be negative")

	_, err = run(t, "show", "--driver", "redis")
	require.ErrorContains(t, err, "unsupported driver")

	_, err = run(t, "watch", "--driver", driverSQLite, "--sqlite-path", filepath.Join(dir, "cart.db"))
	require.ErrorContains(t, err, "watch requires")
}

func TestCartctl_UnknownIDIsNoop(t *testing.T) {
	dir := t.TempDir()
	slot := []string{"--driver", driverFile, "--dir", dir}

	_, err := run(t, append([]string{"add", "1", "--price", "2"}, slot...)...)
	require.NoError(t, err)

	for _, op := range []string{"remove", "inc", "dec"} {
		view, err := run(t, append([]string{op, "missing"}, slot...)...)
		require.NoError(t, err)
		require.Equal(t, 1, view.TotalItems, op)
	}
}
