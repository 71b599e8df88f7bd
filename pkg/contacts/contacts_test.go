package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo@Bar.com", "foo@bar.com"},
		{"  ada@example.com\t", "ada@example.com"},
		{"already@lower.io", "already@lower.io"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEmail(tt.in))
		})
	}
}

func TestKeysMatchAcrossCasing(t *testing.T) {
	row := Row{Email: "Foo@Bar.com"}
	sub := Subscriber{Email: "foo@bar.com"}
	assert.Equal(t, row.Key(), sub.Key())
	assert.Equal(t, "Foo@Bar.com", row.Email)
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full, first, rest string
	}{
		{"Grace Hopper", "Grace", "Hopper"},
		{"Ada King Lovelace", "Ada", "King Lovelace"},
		{"Cher", "Cher", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.full, func(t *testing.T) {
			first, rest := SplitName(tt.full)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		first, last, want string
	}{
		{"Ada", "Lovelace", "Ada Lovelace"},
		{"Ada", "", "Ada"},
		{"", "Lovelace", "Lovelace"},
		{"", "", ""},
	}
	for _, tt := range tests {
		s := Subscriber{FirstName: tt.first, LastName: tt.last}
		assert.Equal(t, tt.want, s.DisplayName())
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	for _, name := range []string{"Grace Hopper", "Ada King Lovelace", "Cher"} {
		assert.Equal(t, name, JoinName(SplitName(name)))
	}
}

func TestTagsEqual(t *testing.T) {
	assert.True(t, TagsEqual([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, TagsEqual([]string{"a", "b"}, []string{"b", "a"}))
	assert.False(t, TagsEqual([]string{"a"}, []string{"a", "b"}))
	assert.True(t, TagsEqual(nil, []string{}))
}

func TestStatusIsRemoved(t *testing.T) {
	assert.True(t, StatusCleaned.IsRemoved())
	assert.True(t, StatusArchived.IsRemoved())
	assert.False(t, StatusSubscribed.IsRemoved())
	assert.False(t, StatusPending.IsRemoved())
	assert.False(t, Status("transactional").IsRemoved())
}

func TestPatchIsEmpty(t *testing.T) {
	assert.True(t, RowPatch{}.IsEmpty())
	assert.False(t, RowPatch{Tags: []string{}}.IsEmpty())
	assert.True(t, SubscriberPatch{}.IsEmpty())

	name := "x"
	assert.False(t, SubscriberPatch{FirstName: &name}.IsEmpty())
}
