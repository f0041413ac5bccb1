package savant

// DTOs raw de los CSV de Savant y del Chadwick register. Solo se usan dentro de este paquete.
// La conversión a domain se hace en mapping.go.

// --- Baseball Savant ---

// statcastRow es una fila de /statcast_search/csv (type=details).
// Los numéricos llegan como strings porque los faltantes vienen vacíos o como "null".
// Las columnas no declaradas se ignoran.
type statcastRow struct {
	PitchType       string `csv:"pitch_type"`
	GameDate        string `csv:"game_date"`
	ReleaseSpeed    string `csv:"release_speed"`
	ReleaseSpinRate string `csv:"release_spin_rate"`
	PfxX            string `csv:"pfx_x"`
	PfxZ            string `csv:"pfx_z"`
	Stand           string `csv:"stand"`
	GameType        string `csv:"game_type"`
	Pitcher         string `csv:"pitcher"`
	PlayerName      string `csv:"player_name"`
	GamePk          string `csv:"game_pk"`
}

// --- Chadwick register ---

// registerRow es una fila de people-*.csv.
type registerRow struct {
	KeyPerson      string `csv:"key_person"`
	KeyMLBAM       string `csv:"key_mlbam"`
	KeyBBRef       string `csv:"key_bbref"`
	KeyFangraphs   string `csv:"key_fangraphs"`
	NameLast       string `csv:"name_last"`
	NameFirst      string `csv:"name_first"`
	MLBPlayedFirst string `csv:"mlb_played_first"`
	MLBPlayedLast  string `csv:"mlb_played_last"`
}
