package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "NAMED" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  any
		want string
	}{
		{name: "nil", obj: nil, want: "NIL"},
		{name: "stringer", obj: named{}, want: "NAMED"},
		{name: "string", obj: "engine", want: "engine"},
		{name: "type_name", obj: plain{}, want: "plain"},
		{name: "pointer_type_name", obj: &plain{}, want: "plain"},
		{name: "truncated", obj: "a-very-long-object-name-indeed", want: "a-very-long-object-n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, objToString(tt.obj))
		})
	}
}
