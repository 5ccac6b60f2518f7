package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigKeyValidation(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"nperm", "50000", false},
		{"nperm", "0", true},
		{"nperm", "many", true},
		{"parallelism", "8", false},
		{"parallelism", "-1", true},
		{"stat", "gsea", false},
		{"stat", "ttest", true},
		{"signif", "nullDist", false},
		{"signif", "bootstrap", true},
		{"adj", "bonferroni", false},
		{"adj", "sidak", true},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := configKeys[tt.key].validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetConfigRejectsUnknownKey(t *testing.T) {
	err := setConfig("colour", "blue")
	assert.Error(t, err)
}
