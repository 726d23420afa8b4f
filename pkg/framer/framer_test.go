package framer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, uint32(64<<20), cfg.MaxBodyBytes)
	assert.Equal(t, CategoryUnknown, cfg.Fallback)
	assert.Empty(t, cfg.Categories)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name: "valid",
			cfg:  &Config{MaxBodyBytes: 1024, Fallback: CategoryBase},
		},
		{
			name:    "zero max body",
			cfg:     &Config{Fallback: CategoryBase},
			wantErr: true,
		},
		{
			name:    "invalid fallback",
			cfg:     &Config{MaxBodyBytes: 1024, Fallback: Category(100)},
			wantErr: true,
		},
		{
			name: "invalid rule",
			cfg: &Config{
				MaxBodyBytes: 1024,
				Categories:   []CategoryRule{{Type: 1, Category: Category(-3)}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		f, err := New(nil)
		require.NoError(t, err)
		assert.Equal(t, uint32(64<<20), f.MaxBodyBytes())
		assert.Equal(t, CategoryBase, f.Categorize(TypePing))
		assert.Equal(t, CategoryUnknown, f.Categorize(12345))
	})

	t.Run("custom rules and fallback", func(t *testing.T) {
		f, err := New(&Config{
			MaxBodyBytes: 16,
			Fallback:     CategoryShareSet,
			Categories: []CategoryRule{
				{Type: TypePing, Category: CategoryOverlay},
				{Type: 700, Category: CategoryProposal},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, uint32(16), f.MaxBodyBytes())
		assert.Equal(t, CategoryOverlay, f.Categorize(TypePing))
		assert.Equal(t, CategoryProposal, f.Categorize(700))
		assert.Equal(t, CategoryShareSet, f.Categorize(701))
		assert.Equal(t, CategoryValidation, f.Categorize(TypeValidation))

		// 内置表不受影响
		assert.Equal(t, CategoryBase, DefaultCategoryTable().Categorize(TypePing))
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := New(&Config{Fallback: Category(77)})
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestFramer_Build(t *testing.T) {
	f, err := New(&Config{MaxBodyBytes: 4})
	require.NoError(t, err)

	msg, err := f.Build(Raw{1, 2, 3, 4}, TypeTransaction)
	require.NoError(t, err)
	assert.Equal(t, CategoryTransaction, msg.Category())

	_, err = f.Build(Raw{1, 2, 3, 4, 5}, TypeTransaction)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFramer_Decode(t *testing.T) {
	f, err := New(&Config{MaxBodyBytes: 8})
	require.NoError(t, err)

	t.Run("valid frame", func(t *testing.T) {
		frame := []byte{0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0xAA, 0xBB, 0xCC}
		msg, err := f.Decode(frame)
		require.NoError(t, err)
		assert.Equal(t, TypePing, msg.Type())
		assert.Equal(t, CategoryBase, msg.Category())
		assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, msg.Payload())

		built, err := Build(Raw{0xAA, 0xBB, 0xCC}, TypePing)
		require.NoError(t, err)
		assert.True(t, built.Equal(msg))
	})

	t.Run("short header", func(t *testing.T) {
		_, err := f.Decode([]byte{0x00, 0x00, 0x00, 0x00, 0x00})
		assert.ErrorIs(t, err, ErrShortFrame)
	})

	t.Run("short body", func(t *testing.T) {
		_, err := f.Decode([]byte{0x00, 0x00, 0x00, 0x03, 0x00, 0x03, 0xAA})
		assert.ErrorIs(t, err, ErrShortFrame)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := f.Decode([]byte{0x00, 0x00, 0x00, 0x01, 0x00, 0x03, 0xAA, 0xBB})
		assert.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("too large", func(t *testing.T) {
		frame := make([]byte, HeaderBytes+9)
		putHeader(frame, Header{BodyLength: 9, Type: TypePing})
		_, err := f.Decode(frame)
		assert.ErrorIs(t, err, ErrFrameTooLarge)
	})
}
