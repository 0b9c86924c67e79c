package notify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/svc/notify"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := notify.DefaultCatalog()
	assert.Equal(t, "Gold", c.PlanName("gold"))
	assert.Equal(t, "Diamond", c.PlanName(" DIAMOND "))
	assert.NotEmpty(t, c.Summary("silver"))
	assert.Empty(t, c.Summary("platinum"))
	assert.Empty(t, c.PlanName(""))
}

func TestParseCatalog(t *testing.T) {
	t.Parallel()

	t.Run("custom names with title-case fallback", func(t *testing.T) {
		t.Parallel()
		c, err := notify.ParseCatalog([]byte("plans:\n  gold:\n    name: Ouro\n"))
		require.NoError(t, err)
		assert.Equal(t, "Ouro", c.PlanName("gold"))
		assert.Equal(t, "Silver", c.PlanName("silver"))
		assert.Equal(t, "Legacy Plus", c.PlanName("legacy_plus"))
	})

	t.Run("unknown plan key", func(t *testing.T) {
		t.Parallel()
		_, err := notify.ParseCatalog([]byte("plans:\n  platinum:\n    name: Platinum\n"))
		assert.ErrorIs(t, err, notify.ErrInvalidCatalog)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		_, err := notify.ParseCatalog([]byte("plans: [unclosed"))
		assert.ErrorIs(t, err, notify.ErrInvalidCatalog)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		cfg     notify.Config
		wantErr bool
	}{
		{"email", notify.Config{Mode: notify.ModeEmail}, false},
		{"function", notify.Config{Mode: notify.ModeFunction, FunctionURL: "https://fn.example.com/send"}, false},
		{"function without url", notify.Config{Mode: notify.ModeFunction}, true},
		{"unknown mode", notify.Config{Mode: "sms"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, notify.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
