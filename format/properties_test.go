package format

import (
	"reflect"
	"testing"
)

func TestParseProperties(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Bag
	}{
		{
			name: "separators",
			data: "a=1\nb: 2\nc 3\nd = 4\ne   :   5\n",
			want: Bag{"a": "1", "b": "2", "c": "3", "d": "4", "e": "5"},
		},
		{
			name: "comments and blank lines",
			data: "# comment\n  ! also comment\n\n\tkey=value\n",
			want: Bag{"key": "value"},
		},
		{
			name: "continuation",
			data: "greeting=hello \\\n    world\nnext=1\n",
			want: Bag{"greeting": "hello world", "next": "1"},
		},
		{
			name: "escaped backslash is not continuation",
			data: "path=C:\\\\\nnext=1\n",
			want: Bag{"path": `C:\`, "next": "1"},
		},
		{
			name: "escapes",
			data: "tab=a\\tb\nuni=\\u0041\\u00e9\nkey\\ with\\=sep=v\n",
			want: Bag{"tab": "a\tb", "uni": "Aé", "key with=sep": "v"},
		},
		{
			name: "value keeps separators",
			data: "url=http://host:80/a=b\n",
			want: Bag{"url": "http://host:80/a=b"},
		},
		{
			name: "empty value and last duplicate wins",
			data: "empty=\nk=1\nk=2\n",
			want: Bag{"empty": "", "k": "2"},
		},
		{
			name: "crlf and no trailing newline",
			data: "a=1\r\nb=2",
			want: Bag{"a": "1", "b": "2"},
		},
		{
			name: "references stay literal",
			data: "base=/srv\nlogs=${base}/logs\n",
			want: Bag{"base": "/srv", "logs": "${base}/logs"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProperties([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseProperties() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseProperties() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseProperties_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed unicode escape", "a=\\u00zz\n"},
		{"malformed unicode escape in key", "k\\u12=v\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseProperties([]byte(tt.data)); err == nil {
				t.Errorf("ParseProperties(%q) should fail", tt.data)
			}
		})
	}
}
