package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceRecord_Status(t *testing.T) {
	tests := []struct {
		name     string
		brand    bool
		user     bool
		expected RecordStatus
	}{
		{"fresh record", false, false, StatusCreated},
		{"brand only", true, false, StatusBrandVerified},
		{"user only", false, true, StatusUserVerified},
		{"both", true, true, StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ServiceRecord{VerifiedByBrand: tt.brand, VerifiedByUser: tt.user}
			assert.Equal(t, tt.expected, r.Status())
		})
	}
}

func TestServiceRecord_HasPart(t *testing.T) {
	r := ServiceRecord{Parts: [PartsPerRecord]string{"filter", "oil", "", "", ""}}

	assert.True(t, r.HasPart("filter"))
	assert.True(t, r.HasPart("oil"))
	assert.False(t, r.HasPart("Filter"))
	assert.False(t, r.HasPart("filter "))
	assert.False(t, r.HasPart(""))
	assert.False(t, r.HasPart("brake pad"))
}

func TestServiceRecord_Clone(t *testing.T) {
	r := ServiceRecord{BrandSignature: []byte{1, 2, 3}}

	c := r.Clone()
	c.BrandSignature[0] = 9

	assert.Equal(t, byte(1), r.BrandSignature[0])
	assert.Nil(t, c.CustomerSignature)
}
