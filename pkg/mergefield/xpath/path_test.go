package xpath

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Path
	}{
		{
			name:  "absolute",
			input: "/w:document[1]/w:body[1]/w:p[3]",
			want: Path{Absolute: true, Steps: []Step{
				{Tag: "w:document", Index: 1},
				{Tag: "w:body", Index: 1},
				{Tag: "w:p", Index: 3},
			}},
		},
		{name: "identity", input: "./", want: Path{}},
		{name: "dot", input: ".", want: Path{}},
		{
			name:  "descendant",
			input: "./w:r[2]",
			want:  Path{Steps: []Step{{Tag: "w:r", Index: 2}}},
		},
		{name: "parent", input: "..", want: Path{Up: 1}},
		{name: "grandparent", input: "../..", want: Path{Up: 2}},
		{
			name:  "negative offset",
			input: "../../w:p[-2]/w:r[1]",
			want: Path{Up: 2, Steps: []Step{
				{Tag: "w:p", Index: -2, Signed: true},
				{Tag: "w:r", Index: 1},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	inputs := []string{
		"",
		"/",
		"/w:p",
		"/w:p[0]",
		"/w:p[x]",
		"/w:p[+1]",
		"../w:p[2]",
		"./w:p[-1]",
		"/[1]",
		"/w:p[1]//w:r[1]",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPath))
		})
	}
}

func TestPathStringCanonical(t *testing.T) {
	for _, in := range []string{
		"/w:document[1]/w:body[1]/w:p[3]",
		"./",
		"./w:r[2]/w:t[1]",
		"..",
		"../..",
		"../w:p[+2]/w:r[1]",
		"../../../w:tbl[-1]",
	} {
		p, err := Parse(in)
		require.NoError(t, err)
		assert.Equal(t, in, p.String())
	}
}
