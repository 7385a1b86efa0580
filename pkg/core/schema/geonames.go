package schema

// Описание схемы справочника GeoNames.
//
// Дескриптор неизменяемый: Geonames() строит его один раз при старте,
// дальше он передается по ссылке в SchemaManager, BulkLoader и IndexBuilder.
// Никакого глобального мутабельного состояния — порядок колонок здесь
// одновременно является порядком полей в исходных TSV-файлах.

// Имена таблиц справочника
const (
	TableGeoname          = "geoname"
	TableAlternateName    = "alternatename"
	TableCountryInfo      = "countryinfo"
	TableISOLanguageCodes = "iso_languagecodes"
	TableAdmin1Codes      = "admin1codesascii"
	TableAdmin2Codes      = "admin2codesascii"
	TableFeatureCodes     = "featurecodes"
	TableTimezones        = "timezones"
	TableContinentCodes   = "continentcodes"
	TablePostalCodes      = "postalcodes"
	TableMeta             = "meta"
)

// Geonames описывает полную схему справочника
type Geonames struct {
	Tables      []TableDef
	Indexes     []IndexDef
	PrimaryKeys []PrimaryKeyDef
	ForeignKeys []ForeignKeyDef
}

// Table возвращает определение таблицы по имени (nil если не найдена)
func (s *Geonames) Table(name string) *TableDef {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// DropOrder возвращает имена таблиц в порядке удаления:
// зависимые таблицы (с FK на geoname) раньше той, на которую они ссылаются.
// На диалектах без каскадного DROP порядок обязателен, иначе
// удаление упадет на проверке ссылочной целостности.
func (s *Geonames) DropOrder() []string {
	return []string{
		TableAlternateName,
		TableCountryInfo,
		TableGeoname,
		TablePostalCodes,
		TableAdmin1Codes,
		TableAdmin2Codes,
		TableISOLanguageCodes,
		TableFeatureCodes,
		TableTimezones,
		TableContinentCodes,
		TableMeta,
	}
}

// ContinentRow статическая строка таблицы continentcodes
type ContinentRow struct {
	Code      string
	Name      string
	Geonameid int64
}

// Continents возвращает фиксированный набор континентов.
// Это единственная таблица, данные которой не приходят из файла.
func Continents() []ContinentRow {
	return []ContinentRow{
		{"AF", "Africa", 6255146},
		{"AS", "Asia", 6255147},
		{"EU", "Europe", 6255148},
		{"NA", "North America", 6255149},
		{"OC", "Oceania", 6255150},
		{"SA", "South America", 6255151},
		{"AN", "Antarctica", 6255152},
	}
}

// NewGeonames строит дескриптор схемы справочника GeoNames
func NewGeonames() *Geonames {
	return &Geonames{
		Tables: []TableDef{
			{
				Name: TableGeoname,
				Columns: []ColumnDef{
					{Name: "geonameid", Type: TypeInteger},
					{Name: "name", Type: TypeVarchar, Length: 200},
					{Name: "asciiname", Type: TypeVarchar, Length: 200},
					{Name: "alternatenames", Type: TypeText},
					{Name: "latitude", Type: TypeReal},
					{Name: "longitude", Type: TypeReal},
					{Name: "fclass", Type: TypeChar, Length: 1},
					{Name: "fcode", Type: TypeVarchar, Length: 10},
					{Name: "country", Type: TypeVarchar, Length: 3},
					{Name: "cc2", Type: TypeText},
					{Name: "admin1", Type: TypeVarchar, Length: 20},
					{Name: "admin2", Type: TypeVarchar, Length: 80},
					{Name: "admin3", Type: TypeVarchar, Length: 20},
					{Name: "admin4", Type: TypeVarchar, Length: 20},
					{Name: "population", Type: TypeBigInt},
					{Name: "elevation", Type: TypeInteger},
					{Name: "gtopo30", Type: TypeInteger},
					{Name: "timezone", Type: TypeVarchar, Length: 40},
					{Name: "moddate", Type: TypeDate},
				},
			},
			{
				Name: TableAlternateName,
				Columns: []ColumnDef{
					{Name: "alternatenameid", Type: TypeInteger},
					{Name: "geonameid", Type: TypeInteger},
					{Name: "isolanguage", Type: TypeVarchar, Length: 7},
					{Name: "alternatename", Type: TypeVarchar, Length: 500},
					{Name: "ispreferredname", Type: TypeBoolean},
					{Name: "isshortname", Type: TypeBoolean},
					{Name: "iscolloquial", Type: TypeBoolean},
					{Name: "ishistoric", Type: TypeBoolean},
				},
			},
			{
				Name: TableCountryInfo,
				Columns: []ColumnDef{
					{Name: "iso_alpha2", Type: TypeChar, Length: 2},
					{Name: "iso_alpha3", Type: TypeChar, Length: 3},
					{Name: "iso_numeric", Type: TypeInteger},
					{Name: "fips_code", Type: TypeVarchar, Length: 3},
					{Name: "country", Type: TypeVarchar, Length: 200},
					{Name: "capital", Type: TypeVarchar, Length: 200},
					{Name: "areainsqkm", Type: TypeReal},
					{Name: "population", Type: TypeInteger},
					{Name: "continent", Type: TypeChar, Length: 3},
					{Name: "tld", Type: TypeChar, Length: 10},
					{Name: "currency_code", Type: TypeChar, Length: 3},
					{Name: "currency_name", Type: TypeChar, Length: 25},
					{Name: "phone", Type: TypeVarchar, Length: 20},
					{Name: "postal", Type: TypeVarchar, Length: 60},
					{Name: "postalregex", Type: TypeVarchar, Length: 200},
					{Name: "languages", Type: TypeVarchar, Length: 200},
					{Name: "geonameid", Type: TypeInteger},
					{Name: "neighbours", Type: TypeVarchar, Length: 50},
					{Name: "equivalent_fips_code", Type: TypeVarchar, Length: 3},
				},
			},
			{
				Name: TableISOLanguageCodes,
				Columns: []ColumnDef{
					{Name: "iso_639_3", Type: TypeChar, Length: 4},
					{Name: "iso_639_2", Type: TypeVarchar, Length: 50},
					{Name: "iso_639_1", Type: TypeVarchar, Length: 50},
					{Name: "language_name", Type: TypeVarchar, Length: 200},
				},
			},
			{
				Name: TableAdmin1Codes,
				Columns: []ColumnDef{
					{Name: "code", Type: TypeChar, Length: 20},
					{Name: "name", Type: TypeText},
					{Name: "nameascii", Type: TypeText},
					{Name: "geonameid", Type: TypeInteger},
					// Первые 2 символа code; заполняется обогащением
					{Name: "countrycode", Type: TypeVarchar, Length: 25, Derived: true},
				},
			},
			{
				Name: TableAdmin2Codes,
				Columns: []ColumnDef{
					{Name: "code", Type: TypeChar, Length: 80},
					{Name: "name", Type: TypeText},
					{Name: "nameascii", Type: TypeText},
					{Name: "geonameid", Type: TypeInteger},
					// Первые 2 символа code; заполняется обогащением
					{Name: "countrycode", Type: TypeVarchar, Length: 25, Derived: true},
				},
			},
			{
				Name: TableFeatureCodes,
				Columns: []ColumnDef{
					{Name: "code", Type: TypeChar, Length: 7},
					{Name: "name", Type: TypeVarchar, Length: 200},
					{Name: "description", Type: TypeText},
				},
			},
			{
				Name: TableTimezones,
				Columns: []ColumnDef{
					{Name: "countrycode", Type: TypeChar, Length: 20},
					{Name: "timezoneid", Type: TypeVarchar, Length: 200},
					{Name: "gmt_offset", Type: TypeNumeric, Precision: 3, Scale: 1},
					{Name: "dst_offset", Type: TypeNumeric, Precision: 3, Scale: 1},
					{Name: "raw_offset", Type: TypeNumeric, Precision: 3, Scale: 1},
				},
			},
			{
				Name: TableContinentCodes,
				Columns: []ColumnDef{
					{Name: "code", Type: TypeChar, Length: 2},
					{Name: "name", Type: TypeVarchar, Length: 20},
					{Name: "geonameid", Type: TypeInteger},
				},
			},
			{
				Name: TablePostalCodes,
				Columns: []ColumnDef{
					{Name: "countrycode", Type: TypeChar, Length: 2},
					{Name: "postalcode", Type: TypeVarchar, Length: 20},
					{Name: "placename", Type: TypeVarchar, Length: 180},
					{Name: "admin1name", Type: TypeVarchar, Length: 100},
					{Name: "admin1code", Type: TypeVarchar, Length: 20},
					{Name: "admin2name", Type: TypeVarchar, Length: 100},
					{Name: "admin2code", Type: TypeVarchar, Length: 20},
					{Name: "admin3name", Type: TypeVarchar, Length: 100},
					{Name: "admin3code", Type: TypeVarchar, Length: 20},
					{Name: "latitude", Type: TypeReal},
					{Name: "longitude", Type: TypeReal},
					{Name: "accuracy", Type: TypeSmallInt},
					// Derived-колонки; заполняются обогащением
					{Name: "admin1code_full", Type: TypeVarchar, Length: 100, Derived: true},
					{Name: "admin2code_full", Type: TypeVarchar, Length: 100, Derived: true},
					{Name: "admin3code_full", Type: TypeVarchar, Length: 100, Derived: true},
					{Name: "admin1nameascii", Type: TypeVarchar, Length: 100, Derived: true},
					{Name: "admin2nameascii", Type: TypeVarchar, Length: 100, Derived: true},
					{Name: "admin3nameascii", Type: TypeVarchar, Length: 100, Derived: true},
				},
			},
			{
				Name: TableMeta,
				Columns: []ColumnDef{
					{Name: "version", Type: TypeText},
					{Name: "data_uri", Type: TypeText},
					{Name: "data_version", Type: TypeText},
					{Name: "date_accessed", Type: TypeTimestamp},
				},
			},
		},

		// Первичные ключи добавляются IndexBuilder-ом ПОСЛЕ загрузки,
		// поэтому они не входят в определения таблиц.
		PrimaryKeys: []PrimaryKeyDef{
			{Name: "alternatenameid_pkey", Table: TableAlternateName, Column: "alternatenameid"},
			{Name: "geonameid_pkey", Table: TableGeoname, Column: "geonameid"},
			{Name: "iso_alpha2_pkey", Table: TableCountryInfo, Column: "iso_alpha2"},
		},

		ForeignKeys: []ForeignKeyDef{
			{
				Name:  "countryinfo_geonameid_fkey",
				Table: TableCountryInfo, Column: "geonameid",
				RefTable: TableGeoname, RefColumn: "geonameid",
			},
			{
				Name:  "alternatename_geonameid_fkey",
				Table: TableAlternateName, Column: "geonameid",
				RefTable: TableGeoname, RefColumn: "geonameid",
			},
		},

		Indexes: []IndexDef{
			// countryinfo
			{Name: "countryinfo_geonameid_idx", Table: TableCountryInfo, Columns: []string{"geonameid"}},
			// alternatename
			{Name: "alternatename_geonameid_idx", Table: TableAlternateName, Columns: []string{"geonameid"}},
			{Name: "alternatename_isolanguage_idx", Table: TableAlternateName, Columns: []string{"isolanguage"}},
			{Name: "alternatename_alternatename_idx", Table: TableAlternateName, Columns: []string{"alternatename"}},
			{Name: "alternatename_ispreferredname_idx", Table: TableAlternateName, Columns: []string{"ispreferredname"}},
			{Name: "alternatename_isshortname_idx", Table: TableAlternateName, Columns: []string{"isshortname"}},
			{Name: "alternatename_iscolloquial_idx", Table: TableAlternateName, Columns: []string{"iscolloquial"}},
			{Name: "alternatename_ishistoric_idx", Table: TableAlternateName, Columns: []string{"ishistoric"}},
			// geoname
			{Name: "geoname_name_idx", Table: TableGeoname, Columns: []string{"name"}},
			{Name: "geoname_asciiname_idx", Table: TableGeoname, Columns: []string{"asciiname"}},
			{Name: "geoname_fclass_idx", Table: TableGeoname, Columns: []string{"fclass"}},
			{Name: "geoname_fcode_idx", Table: TableGeoname, Columns: []string{"fcode"}},
			{Name: "geoname_country_idx", Table: TableGeoname, Columns: []string{"country"}},
			{Name: "geoname_cc2_idx", Table: TableGeoname, Columns: []string{"cc2"}},
			{Name: "geoname_admin1_idx", Table: TableGeoname, Columns: []string{"admin1"}},
			{Name: "geoname_admin2_idx", Table: TableGeoname, Columns: []string{"admin2"}},
			{Name: "geoname_admin3_idx", Table: TableGeoname, Columns: []string{"admin3"}},
			{Name: "geoname_admin4_idx", Table: TableGeoname, Columns: []string{"admin4"}},
			// postalcodes — исходные колонки
			{Name: "postalcodes_countrycode_idx", Table: TablePostalCodes, Columns: []string{"countrycode"}},
			{Name: "postalcodes_admin1name_idx", Table: TablePostalCodes, Columns: []string{"admin1name"}},
			{Name: "postalcodes_admin1code_idx", Table: TablePostalCodes, Columns: []string{"admin1code"}},
			{Name: "postalcodes_admin2name_idx", Table: TablePostalCodes, Columns: []string{"admin2name"}},
			{Name: "postalcodes_admin2code_idx", Table: TablePostalCodes, Columns: []string{"admin2code"}},
			{Name: "postalcodes_admin3name_idx", Table: TablePostalCodes, Columns: []string{"admin3name"}},
			{Name: "postalcodes_admin3code_idx", Table: TablePostalCodes, Columns: []string{"admin3code"}},
			// postalcodes — derived-колонки
			{Name: "postalcodes_admin1code_full_idx", Table: TablePostalCodes, Columns: []string{"admin1code_full"}},
			{Name: "postalcodes_admin2code_full_idx", Table: TablePostalCodes, Columns: []string{"admin2code_full"}},
			{Name: "postalcodes_admin3code_full_idx", Table: TablePostalCodes, Columns: []string{"admin3code_full"}},
			{Name: "postalcodes_admin1nameascii_idx", Table: TablePostalCodes, Columns: []string{"admin1nameascii"}},
			{Name: "postalcodes_admin2nameascii_idx", Table: TablePostalCodes, Columns: []string{"admin2nameascii"}},
			{Name: "postalcodes_admin3nameascii_idx", Table: TablePostalCodes, Columns: []string{"admin3nameascii"}},
			// admin1codesascii
			{Name: "admin1codesascii_countrycode_idx", Table: TableAdmin1Codes, Columns: []string{"countrycode"}},
			{Name: "admin1codesascii_name_idx", Table: TableAdmin1Codes, Columns: []string{"name"}},
			{Name: "admin1codesascii_nameascii_idx", Table: TableAdmin1Codes, Columns: []string{"nameascii"}},
			{Name: "admin1codesascii_code_idx", Table: TableAdmin1Codes, Columns: []string{"code"}},
			// admin2codesascii
			{Name: "admin2codesascii_countrycode_idx", Table: TableAdmin2Codes, Columns: []string{"countrycode"}},
			{Name: "admin2codesascii_name_idx", Table: TableAdmin2Codes, Columns: []string{"name"}},
			{Name: "admin2codesascii_nameascii_idx", Table: TableAdmin2Codes, Columns: []string{"nameascii"}},
			{Name: "admin2codesascii_code_idx", Table: TableAdmin2Codes, Columns: []string{"code"}},
			// Координатные B-tree индексы — bounding-box префильтр работает
			// на любом диалекте
			{Name: "geoname_latitude_idx", Table: TableGeoname, Columns: []string{"latitude"}},
			{Name: "geoname_longitude_idx", Table: TableGeoname, Columns: []string{"longitude"}},
			{Name: "postalcodes_latitude_idx", Table: TablePostalCodes, Columns: []string{"latitude"}},
			{Name: "postalcodes_longitude_idx", Table: TablePostalCodes, Columns: []string{"longitude"}},
			// Составной индекс для коррелированного подзапроса "ближайший
			// почтовый индекс": равенство по countrycode + диапазон по
			// latitude/longitude вместо полного скана страны на каждую строку
			{Name: "postalcodes_cc_lat_lon_idx", Table: TablePostalCodes, Columns: []string{"countrycode", "latitude", "longitude"}},
		},
	}
}
