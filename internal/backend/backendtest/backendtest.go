// Package backendtest holds the behavior every backend.Repository must have.
package backendtest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todosync/internal/backend"
	"github.com/idilsaglam/todosync/internal/model"
)

// Run exercises a repository created fresh by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) backend.Repository) {
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		r := open(t)
		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tasks)
		assert.Empty(t, tasks)
	})

	t.Run("create assigns id and keeps order", func(t *testing.T) {
		r := open(t)
		a, err := r.Create(ctx, model.Task{Title: "a"})
		require.NoError(t, err)
		b, err := r.Create(ctx, model.Task{Title: "b", Completed: true})
		require.NoError(t, err)
		assert.False(t, a.ID.IsZero())
		assert.False(t, a.ID.Equal(b.ID))

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "a", tasks[0].Title)
		assert.Equal(t, "b", tasks[1].Title)
		assert.True(t, tasks[1].Completed)
	})

	t.Run("get and missing", func(t *testing.T) {
		r := open(t)
		c, err := r.Create(ctx, model.Task{Title: "x"})
		require.NoError(t, err)

		got, err := r.Get(ctx, c.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "x", got.Title)

		_, err = r.Get(ctx, "nope")
		assert.ErrorIs(t, err, backend.ErrNotFound)
	})

	t.Run("update keeps extra fields", func(t *testing.T) {
		r := open(t)
		var in model.Task
		require.NoError(t, json.Unmarshal([]byte(`{"title":"x","completed":false,"userId":7}`), &in))
		c, err := r.Create(ctx, in)
		require.NoError(t, err)

		c.Completed = true
		_, err = r.Update(ctx, c)
		require.NoError(t, err)

		got, err := r.Get(ctx, c.ID.String())
		require.NoError(t, err)
		assert.True(t, got.Completed)
		v, ok := got.Extra("userId")
		require.True(t, ok)
		assert.JSONEq(t, "7", string(v))

		_, err = r.Update(ctx, model.Task{ID: model.StringID("nope"), Title: "y"})
		assert.ErrorIs(t, err, backend.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r := open(t)
		c, err := r.Create(ctx, model.Task{Title: "x"})
		require.NoError(t, err)

		require.NoError(t, r.Delete(ctx, c.ID.String()))
		assert.ErrorIs(t, r.Delete(ctx, c.ID.String()), backend.ErrNotFound)

		tasks, err := r.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}
