package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plankhq/plank.go/pkg/models"
)

func TestParseID(t *testing.T) {
	rules := []struct {
		Name  string
		Input string
		Valid bool
	}{
		{Name: "Valid", Input: "560bf4298b3dda300c18d09c", Valid: true},
		{Name: "TooShort", Input: "560bf429", Valid: false},
		{Name: "TooLong", Input: "560bf4298b3dda300c18d09c00", Valid: false},
		{Name: "UppercaseHex", Input: "560BF4298B3DDA300C18D09C", Valid: false},
		{Name: "NonHex", Input: "560bf4298b3dda300c18d09z", Valid: false},
		{Name: "Empty", Input: "", Valid: false},
	}

	for _, rule := range rules {
		t.Run(rule.Name, func(t *testing.T) {
			id, err := models.ParseID(rule.Input)
			if !rule.Valid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, rule.Input, id.String())
		})
	}
}

func TestIDTime(t *testing.T) {
	// 0x560bf429 is 1443623977 unix seconds
	id := models.ID("560bf4298b3dda300c18d09c")
	created, err := id.Time()
	require.NoError(t, err)
	require.Equal(t, time.Date(2015, 9, 30, 14, 39, 37, 0, time.UTC), created)
}

func TestIDTimeInvalid(t *testing.T) {
	_, err := models.ID("nothex").Time()
	require.Error(t, err)
}
