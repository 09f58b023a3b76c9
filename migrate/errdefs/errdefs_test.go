package errdefs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSentinels(t *testing.T) {
	err := fmt.Errorf("apply: %w", DuplicateCollection("users"))

	assert.True(t, errors.Is(err, ErrDuplicateCollection))
	assert.False(t, errors.Is(err, ErrDuplicateGraph))
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsMissing(err))
	assert.Equal(t, KindDuplicateCollection, KindOf(err))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{DuplicateCollection("users"), "Duplicate Collection: users"},
		{MissingIndex("users", "OnEmail"), "Missing Index: OnEmail on collection users"},
		{MissingIndex("", "OnEmail"), "Missing Index: OnEmail"},
		{InvalidFileName("abc_users.yaml"), "Invalid File Name: abc_users.yaml"},
		{NoMigrations(), "no migrations found"},
		{InvalidParameter("COUNT", "Must be a valid number"), "invalid parameter: COUNT (Must be a valid number)"},
		{Init("db_host", "DB_HOST is not specified"), "failed to initialize db_host (DB_HOST is not specified)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestDatabaseWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Database(cause)

	assert.True(t, errors.Is(err, ErrDatabase))
	assert.True(t, errors.Is(err, cause))
	assert.Same(t, err, Database(err))
	assert.Nil(t, Database(nil))
	assert.Nil(t, IO(nil))
}
