package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skycat/model"
)

func TestResultQueue_Bounded(t *testing.T) {
	q := newResultQueue(3)
	for i, sep := range []float64{5, 1, 4, 2, 3, 0.5} {
		q.Push(candidate{sep: sep, zone: 1, number: model.RunningNumber(i + 1)})
	}

	require.Equal(t, 3, q.Len())
	assert.True(t, q.Full())

	top, ok := q.Top()
	require.True(t, ok)
	assert.Equal(t, 2.0, top.sep)

	got := q.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, 0.5, got[0].sep)
	assert.Equal(t, 1.0, got[1].sep)
	assert.Equal(t, 2.0, got[2].sep)
	assert.Zero(t, q.Len())
}

func TestResultQueue_TiesByIdentifier(t *testing.T) {
	q := newResultQueue(2)
	q.Push(candidate{sep: 1, zone: 5, number: 9})
	q.Push(candidate{sep: 1, zone: 4, number: 20})
	q.Push(candidate{sep: 1, zone: 5, number: 2})

	got := q.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, model.ZoneID(4), got[0].zone)
	assert.Equal(t, model.RunningNumber(2), got[1].number)
}

func TestResultQueue_Empty(t *testing.T) {
	q := newResultQueue(1)
	_, ok := q.Top()
	assert.False(t, ok)
	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Empty(t, q.Drain())
}
