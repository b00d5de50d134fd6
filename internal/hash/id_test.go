package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
		})
	}
}

func TestIdentifier(t *testing.T) {
	// The identifier hash is the low 32 bits of the 64-bit hash.
	for _, s := range []string{"", "x", "globalThis", "veryLongIdentifierNameUsedInTests"} {
		t.Run("identifier "+s, func(t *testing.T) {
			assert.Equal(t, uint32(ID(s)), Identifier([]byte(s)))
		})
	}
}

func TestIdentifierDeterministic(t *testing.T) {
	first := Identifier([]byte("prototype"))
	for range 10 {
		assert.Equal(t, first, Identifier([]byte("prototype")))
	}
}
