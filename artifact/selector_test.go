package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMetadata() Metadata {
	return Metadata{
		ContractName: "payment_contract",
		Constructors: []Constructor{
			{Label: "new", Selector: [4]byte{0x9b, 0xae, 0x9d, 0x5e}},
			{Label: "default", Selector: [4]byte{0xed, 0x4b, 0x9d, 0x1b}},
		},
	}
}

func TestConstructorByLabel(t *testing.T) {
	meta := testMetadata()

	ctor, err := meta.Constructor("new")
	require.NoError(t, err)
	assert.Equal(t, "new", ctor.Label)

	// Selection is deterministic and side-effect free.
	again, err := meta.Constructor("new")
	require.NoError(t, err)
	assert.Equal(t, ctor, again)
}

func TestConstructorByLabelNotFound(t *testing.T) {
	_, err := testMetadata().Constructor("missing")
	assert.ErrorIs(t, err, ErrNoConstructor)
}

func TestConstructorByLabelAmbiguous(t *testing.T) {
	meta := testMetadata()
	meta.Constructors = append(meta.Constructors, Constructor{Label: "new"})

	_, err := meta.Constructor("new")
	assert.ErrorIs(t, err, ErrAmbiguousConstructor)
}

func TestConstructorAt(t *testing.T) {
	meta := testMetadata()

	ctor, err := meta.ConstructorAt(1)
	require.NoError(t, err)
	assert.Equal(t, "default", ctor.Label)

	_, err = meta.ConstructorAt(2)
	assert.ErrorIs(t, err, ErrNoConstructor)

	_, err = meta.ConstructorAt(-1)
	assert.ErrorIs(t, err, ErrNoConstructor)
}
