package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewStoreMetadata(t *testing.T) {
	stamp := time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

	meta := NewStoreMetadata(nil, 3, stamp)

	assert.Equal(t, "2024-03-09 07:05:01", meta.CreatedAt)
	assert.Equal(t, 3, meta.TotalChunks)
	assert.NotNil(t, meta.Files)
	assert.NoError(t, meta.Validate())
}

func TestStoreMetadata_Validate(t *testing.T) {
	tests := []struct {
		name    string
		meta    StoreMetadata
		wantErr bool
	}{
		{name: "valid", meta: StoreMetadata{CreatedAt: "2024-01-02 03:04:05", TotalChunks: 1}},
		{name: "rfc3339 timestamp", meta: StoreMetadata{CreatedAt: "2024-01-02T03:04:05Z"}, wantErr: true},
		{name: "negative chunks", meta: StoreMetadata{CreatedAt: "2024-01-02 03:04:05", TotalChunks: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.meta.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
