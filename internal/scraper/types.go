package scraper

// RawRecord строка листинга до обогащения, идентичность по ID
type RawRecord struct {
	ID    string
	Title string
}

// Valid строка пригодна для выборки только при непустых ID и заголовке
func (r RawRecord) Valid() bool {
	return r.ID != "" && r.Title != ""
}

type Selectors struct {
	RowSelector    string   `yaml:"row_selector"`
	IDAttr         string   `yaml:"id_attr"`
	TitleSelectors []string `yaml:"title_selectors"`
	NextPageLink   []string `yaml:"next_page_link"`
}
