package imports

import "testing"

func TestParseCSVCommaDelimited(t *testing.T) {
	rows, err := ParseCSV("name,email,phone\nMaria,maria@x.com,11999998888\nJoao,joao@x.com,11988887777\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Maria" || rows[0].Email != "maria@x.com" || rows[0].Phone != "11999998888" {
		t.Errorf("row 0 = %+v", rows[0])
	}
}

func TestParseCSVSemicolonAndPortugueseHeaders(t *testing.T) {
	rows, err := ParseCSV("Nome;E-mail;Telefone;Produto\nAna;ana@x.com;11 91234-5678;Curso\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	row := rows[0]
	if row.Name != "Ana" || row.Email != "ana@x.com" || row.Phone != "11 91234-5678" || row.Product != "Curso" {
		t.Errorf("row = %+v", row)
	}
}

func TestParseCSVWhatsAppHeaderMapsToPhone(t *testing.T) {
	rows, err := ParseCSV("nome,whatsapp\nCarlos,5511912345678\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Phone != "5511912345678" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseCSVStatusColumn(t *testing.T) {
	rows, err := ParseCSV("name,email,status\nMaria,m@x.com,Em Contato\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].StatusName != "Em Contato" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseCSVDropsRowsWithoutIdentity(t *testing.T) {
	rows, err := ParseCSV("name,email,phone\n,,11999998888\nMaria,maria@x.com,\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestParseCSVQuotedFields(t *testing.T) {
	rows, err := ParseCSV("name,email\n\"Silva, Maria\",maria@x.com\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Silva, Maria" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	rows, err := ParseCSV("name,email,phone\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no rows, got %d", len(rows))
	}
}

func TestParseCSVUnknownHeadersIgnored(t *testing.T) {
	rows, err := ParseCSV("name,email,score\nMaria,maria@x.com,42\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Name != "Maria" || rows[0].Email != "maria@x.com" {
		t.Errorf("row = %+v", rows[0])
	}
}
