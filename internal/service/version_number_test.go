package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextVersionNumber(t *testing.T) {
	tests := []struct {
		name   string
		parent string
		want   string
	}{
		{"root bumps minor", "v1.0", "v1.1"},
		{"minor bumps minor", "v1.1", "v1.2"},
		{"two-part always bumps minor", "v2.7", "v2.8"},
		{"three-part bumps patch", "v2.1.1", "v2.1.2"},
		{"patch chain continues", "v3.0.9", "v3.0.10"},
		{"single component falls back", "v1", "v1.1"},
		{"four components fall back", "v1.2.3.4", "v1.1"},
		{"garbage falls back", "not-a-version", "v1.1"},
		{"empty falls back", "", "v1.1"},
		{"negative component falls back", "v1.-2", "v1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextVersionNumber(tt.parent))
		})
	}
}

func TestNextRootVersionNumber(t *testing.T) {
	tests := []struct {
		name  string
		roots []string
		want  string
	}{
		{"empty history starts at v1.0", nil, "v1.0"},
		{"single root", []string{"v1.0"}, "v2.0"},
		{"max major wins regardless of order", []string{"v3.0", "v1.0", "v2.0"}, "v4.0"},
		{"minor part of roots is ignored", []string{"v2.5"}, "v3.0"},
		{"malformed roots are skipped", []string{"draft", "v2.0"}, "v3.0"},
		{"all malformed gives v1.0", []string{"draft", "old"}, "v1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextRootVersionNumber(tt.roots))
		})
	}
}

func TestSplitVersion(t *testing.T) {
	assert.Equal(t, []int{1, 0}, splitVersion("v1.0"))
	assert.Equal(t, []int{2, 1, 3}, splitVersion("v2.1.3"))
	assert.Nil(t, splitVersion("v1.x"))
	assert.Nil(t, splitVersion(""))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Senior Backend CV", "senior-backend-cv"},
		{"  Tech   Focus  ", "tech-focus"},
		{"Cover Letter #2!", "cover-letter-2"},
		{"ALLCAPS", "allcaps"},
		{"!!!", "branch"},
		{"", "branch"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), "slugify(%q)", tt.in)
	}
}
