package migrations

// PropiedadesColumns é o layout alvo da tabela de propriedades, na ordem de criação.
func PropiedadesColumns() []Column {
	return []Column{
		{Name: "id", Type: "BIGSERIAL", PrimaryKey: true},
		{Name: "titulo", Type: "TEXT", NotNull: true},
		{Name: "categoria", Type: "TEXT", NotNull: true},
		{Name: "precio", Type: "TEXT", NotNull: true, Default: "''"},
		{Name: "rating", Type: "TEXT", Default: "'5.0'"},
		{Name: "img", Type: "TEXT", NotNull: true, Default: "''"},
		{Name: "galeria", Type: "TEXT", Default: "'[]'"},
		{Name: "ubicacion", Type: "TEXT", NotNull: true, Default: "''"},
		{Name: "mapa_embed", Type: "TEXT", Default: "''"},
		{Name: "descripcion", Type: "TEXT", NotNull: true, Default: "''"},
		{Name: "huespedes", Type: "INTEGER", NotNull: true, Default: "1"},
		{Name: "dormitorios", Type: "INTEGER", NotNull: true, Default: "0"},
		{Name: "banios", Type: "INTEGER", NotNull: true, Default: "0"},
		{Name: "amenidades", Type: "TEXT", Default: "'[]'"},
		{Name: "created_at", Type: "TIMESTAMPTZ", Default: "NOW()"},
		{Name: "updated_at", Type: "TIMESTAMPTZ", Default: "NOW()"},
	}
}

// PropiedadesRenames lista as colunas renomeadas entre versões do schema.
func PropiedadesRenames() []Rename {
	return []Rename{
		{From: "coordenadas", To: "mapa_embed"},
	}
}
