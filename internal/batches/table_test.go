package batches_test

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/JaimeStill/noshow/internal/batches"
)

func TestParseTableDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "O.S.;Observação\n1;texto, com vírgula\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"quoted commas ignored", "\"a,b\";\"c,d\"\n1;2\n", ';'},
		{"single column", "narrativa\ntexto\n", ','},
		{"leading blank line", "\n\na;b\n1;2\n", ';'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := batches.ParseTable([]byte(tt.data))
			if err != nil {
				t.Fatalf("ParseTable: %v", err)
			}
			if table.Delimiter != tt.want {
				t.Errorf("delimiter: got %q, want %q", table.Delimiter, tt.want)
			}
		})
	}
}

func TestParseTableShape(t *testing.T) {
	data := "\xef\xbb\xbfO.S.; Observação ;Cliente\n1001;texto;ACME\n1002;curto\n1003;x;y;\n"

	table, err := batches.ParseTable([]byte(data))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	if want := []string{"O.S.", "Observação", "Cliente"}; !slices.Equal(table.Header, want) {
		t.Errorf("header: got %q, want %q", table.Header, want)
	}
	if len(table.Records) != 3 {
		t.Fatalf("records: got %d, want 3", len(table.Records))
	}
	if want := []string{"1002", "curto", ""}; !slices.Equal(table.Records[1], want) {
		t.Errorf("padded record: got %q, want %q", table.Records[1], want)
	}
	if want := []string{"1003", "x", "y"}; !slices.Equal(table.Records[2], want) {
		t.Errorf("trimmed record: got %q, want %q", table.Records[2], want)
	}
}

func TestParseTableWindows1252(t *testing.T) {
	data := []byte("Observa\xe7\xe3o;T\xe9cnico\nN\xe3o compareceu;Jo\xe3o\n")

	table, err := batches.ParseTable(data)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if table.Header[0] != "Observação" || table.Header[1] != "Técnico" {
		t.Errorf("header: got %q", table.Header)
	}
	if table.Records[0][1] != "João" {
		t.Errorf("cell: got %q", table.Records[0][1])
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"empty", "", batches.ErrInvalidFile},
		{"header only", "a;b\n", batches.ErrEmptyFile},
		{"blank header", ";\n1;2\n", batches.ErrInvalidFile},
		{"record wider than header", "a;b\n1;2;3\n", batches.ErrInvalidFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := batches.ParseTable([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteLabeled(t *testing.T) {
	table, err := batches.ParseTable([]byte("O.S.;Observação\n1;primeiro\n2;segundo\n"))
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	var buf bytes.Buffer
	if err := table.WriteLabeled(&buf, []string{"Máscara correta"}); err != nil {
		t.Fatalf("WriteLabeled: %v", err)
	}

	want := "O.S.;Observação;Classificação No-show\n" +
		"1;primeiro;Máscara correta\n" +
		"2;segundo;\n"
	if buf.String() != want {
		t.Errorf("output:\ngot  %q\nwant %q", buf.String(), want)
	}
}
