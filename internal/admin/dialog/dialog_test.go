package dialog

import (
	"net/url"
	"testing"

	"github.com/abgdnv/shopadmin/internal/admin/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSave(t *testing.T) {
	testCases := []struct {
		name    string
		form    url.Values
		want    product.Product
		wantErr bool
	}{
		{
			name: "existing product",
			form: url.Values{
				"id": {"2"}, "title": {" Edited "}, "description": {"d"}, "category": {"c"},
				"price": {"10.50"}, "image": {"https://img.example.com/a.png"},
			},
			want: product.Product{ID: 2, Title: "Edited", Description: "d", Category: "c", Price: 10.5, Image: "https://img.example.com/a.png"},
		},
		{
			name: "draft with empty numbers",
			form: url.Values{"id": {""}, "title": {"New"}, "price": {""}},
			want: product.Product{Title: "New"},
		},
		{
			name:    "malformed price",
			form:    url.Values{"id": {"1"}, "price": {"ten"}},
			wantErr: true,
		},
		{
			name:    "NaN price",
			form:    url.Values{"id": {"1"}, "price": {"NaN"}},
			wantErr: true,
		},
		{
			name:    "infinite price",
			form:    url.Values{"id": {"1"}, "price": {"Inf"}},
			wantErr: true,
		},
		{
			name:    "positive infinite price",
			form:    url.Values{"id": {"0"}, "price": {"+Inf"}},
			wantErr: true,
		},
		{
			name:    "price overflowing float64",
			form:    url.Values{"id": {"0"}, "price": {"1e400"}},
			wantErr: true,
		},
		{
			name:    "malformed id",
			form:    url.Values{"id": {"x1"}},
			wantErr: true,
		},
		{
			name:    "negative id",
			form:    url.Values{"id": {"-3"}},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			msg, err := DecodeSave(tc.form)

			// then
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMalformedForm)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, msg.Product)
		})
	}
}

func TestMessageKinds(t *testing.T) {
	assert.Equal(t, SaveDialog, Save{}.dialog())
	assert.Equal(t, DeleteDialog, Delete{}.dialog())
	assert.Equal(t, DeleteDialog, Hide{From: DeleteDialog}.dialog())
}
