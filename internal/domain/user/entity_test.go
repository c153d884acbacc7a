package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithPendingTask(t *testing.T) {
	assert.Equal(t, []string{"t1"}, WithPendingTask(nil, "t1"))
	assert.Equal(t, []string{"t1", "t2"}, WithPendingTask([]string{"t1"}, "t2"))
	assert.Equal(t, []string{"t1", "t2"}, WithPendingTask([]string{"t1", "t2"}, "t1"))
}

func TestWithPendingTask_DoesNotAliasInput(t *testing.T) {
	in := make([]string, 1, 4)
	in[0] = "t1"

	out := WithPendingTask(in, "t2")
	out[0] = "changed"

	assert.Equal(t, "t1", in[0])
}

func TestWithoutPendingTask(t *testing.T) {
	assert.Equal(t, []string{"t2"}, WithoutPendingTask([]string{"t1", "t2", "t1"}, "t1"))
	assert.Equal(t, []string{}, WithoutPendingTask(nil, "t1"))
	assert.Equal(t, []string{"t1"}, WithoutPendingTask([]string{"t1"}, "other"))
}

func TestHasPendingTask(t *testing.T) {
	u := &User{PendingTasks: []string{"a", "b"}}
	assert.True(t, u.HasPendingTask("b"))
	assert.False(t, u.HasPendingTask("c"))
}
