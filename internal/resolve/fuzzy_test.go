package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	items := []string{"add_lead", "update_lead", "add_list"}

	tests := []struct {
		name    string
		query   string
		want    string
		wantErr bool
	}{
		{name: "exact", query: "add_lead", want: "add_lead"},
		{name: "case insensitive exact", query: "ADD_LEAD", want: "add_lead"},
		{name: "fuzzy", query: "updlead", want: "update_lead"},
		{name: "no match", query: "zzz", wantErr: true},
		{name: "empty", query: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Match(tt.query, items)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_EmptyItems(t *testing.T) {
	_, err := Match("add_lead", nil)
	assert.True(t, errors.Is(err, ErrEmptyItems))
}

func TestSuggest(t *testing.T) {
	items := []string{"add_lead"}

	assert.Equal(t, []string{"add_lead"}, Suggest("addlead", items, 3))
	assert.Equal(t, []string{"add_lead"}, Suggest("lead", items, 3))
	assert.Equal(t, []string{"add_lead"}, Suggest("Add-Lead", items, 3))
	assert.Empty(t, Suggest("delete_user", items, 3))
	assert.Nil(t, Suggest("", items, 3))
	assert.Nil(t, Suggest("lead", items, 0))
}

func TestAmbiguousError_Error(t *testing.T) {
	err := &AmbiguousError{Query: "lead", Matches: []string{"a_lead", "b_lead"}}
	assert.Equal(t, `ambiguous match for "lead", candidates: a_lead, b_lead`, err.Error())
}
